package grid

import (
	"strings"
	"testing"

	"github.com/invoxhq/invox/internal/types"
)

func tok(text string, x, top float64) types.PositionedToken {
	return types.PositionedToken{Text: text, X: x, Top: top}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil, 3, 0.2); got != "" {
		t.Errorf("expected empty grid, got %q", got)
	}
	if got := Build([]types.PositionedToken{}, 3, 0.2); got != "" {
		t.Errorf("expected empty grid, got %q", got)
	}
}

func TestBuildColumnAlignment(t *testing.T) {
	tokens := []types.PositionedToken{
		{Text: "Cant.", X: 100, Top: 10},
		{Text: "Pret", X: 200, Top: 10},
		{Text: "5", X: 100, Top: 30},
		{Text: "43.43", X: 200, Top: 30},
	}

	out := Build(tokens, 3, 0.2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}

	// Both rows place their second token at column floor(200*0.2) = 40,
	// so the header and the value start at the same column.
	if strings.Index(lines[0], "Pret") != strings.Index(lines[1], "43.43") {
		t.Errorf("columns not aligned:\n%s", out)
	}
	if strings.Index(lines[0], "Cant.") != 20 {
		t.Errorf("expected first token at column 20, got %d", strings.Index(lines[0], "Cant."))
	}
}

func TestBuildRowGrouping(t *testing.T) {
	// Tops 10 and 12 merge under tolerance 3; 30 stays separate.
	tokens := []types.PositionedToken{
		{Text: "a", X: 0, Top: 10},
		{Text: "b", X: 50, Top: 12},
		{Text: "c", X: 0, Top: 30},
	}

	out := Build(tokens, 3, 0.2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "a") || !strings.Contains(lines[0], "b") {
		t.Errorf("expected a and b on first line: %q", lines[0])
	}
	if lines[1] != "c" {
		t.Errorf("expected second line %q, got %q", "c", lines[1])
	}
}

func TestBuildSortsUnorderedInput(t *testing.T) {
	tokens := []types.PositionedToken{
		{Text: "bottom", X: 0, Top: 100},
		{Text: "right", X: 300, Top: 10},
		{Text: "left", X: 0, Top: 10},
	}

	out := Build(tokens, 3, 0.2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "left") {
		t.Errorf("expected left-most token first: %q", lines[0])
	}
	if strings.Index(lines[0], "left") > strings.Index(lines[0], "right") {
		t.Errorf("horizontal order wrong: %q", lines[0])
	}
	if lines[1] != "bottom" {
		t.Errorf("vertical order wrong: %q", out)
	}
}

func TestBuildOverlappingTokensConcatenate(t *testing.T) {
	// Second token targets a column already passed; padding clamps to zero
	// and the texts concatenate. Documented fallback, not an error.
	tokens := []types.PositionedToken{
		{Text: "ABCDEFGHIJ", X: 0, Top: 10},
		{Text: "XYZ", X: 5, Top: 10},
	}

	out := Build(tokens, 3, 0.2)
	if out != "ABCDEFGHIJXYZ" {
		t.Errorf("expected zero-padding concatenation, got %q", out)
	}
}

func TestBuildDeterminism(t *testing.T) {
	tokens := []types.PositionedToken{
		{Text: "x", X: 10, Top: 5},
		{Text: "y", X: 10, Top: 5}, // identical coordinates: input order wins
		{Text: "z", X: 80, Top: 5.5},
		{Text: "w", X: 40, Top: 20},
	}

	first := Build(tokens, 2, 0.25)
	for i := 0; i < 10; i++ {
		if got := Build(tokens, 2, 0.25); got != first {
			t.Fatalf("output not deterministic: %q vs %q", got, first)
		}
	}
	if !strings.Contains(first, "xy") {
		t.Errorf("equal-coordinate tokens should keep input order: %q", first)
	}
}

func TestBuildEveryTokenAppearsOnce(t *testing.T) {
	tokens := []types.PositionedToken{
		tok("alpha", 0, 0), tok("beta", 100, 0), tok("gamma", 0, 50),
		tok("delta", 200, 50), tok("epsilon", 0, 100),
	}

	out := Build(tokens, 3, 0.2)
	for _, pt := range tokens {
		if strings.Count(out, pt.Text) != 1 {
			t.Errorf("token %q appears %d times", pt.Text, strings.Count(out, pt.Text))
		}
	}
}

func TestBuildWhitespaceOnlyRowDropped(t *testing.T) {
	tokens := []types.PositionedToken{
		{Text: "   ", X: 10, Top: 10},
		{Text: "real", X: 10, Top: 50},
	}

	out := Build(tokens, 3, 0.2)
	if strings.Contains(out, "\n") {
		t.Errorf("whitespace-only row should be filtered: %q", out)
	}
	if !strings.Contains(out, "real") {
		t.Errorf("real token missing: %q", out)
	}
}

func TestBuildRowCountBound(t *testing.T) {
	tokens := []types.PositionedToken{
		tok("a", 0, 0), tok("b", 10, 1), tok("c", 20, 2),
		tok("d", 0, 40), tok("e", 10, 41),
	}

	out := Build(tokens, 3, 0.2)
	lines := strings.Split(out, "\n")
	if len(lines) > len(tokens) {
		t.Errorf("line count %d exceeds token count %d", len(lines), len(tokens))
	}
	if len(lines) != 2 {
		t.Errorf("expected 2 bucketed rows, got %d", len(lines))
	}
}

func TestBuildNegativeCoordinatesAccepted(t *testing.T) {
	tokens := []types.PositionedToken{
		{Text: "neg", X: -50, Top: -10},
		{Text: "pos", X: 100, Top: 20},
	}

	out := Build(tokens, 3, 0.2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if lines[0] != "neg" {
		t.Errorf("negative-coordinate token should lead at column 0: %q", lines[0])
	}
}
