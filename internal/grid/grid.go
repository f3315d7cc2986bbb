// Package grid reconstructs a character-grid text representation from
// positioned tokens so that tabular columns stay visually aligned for a
// downstream language model.
package grid

import (
	"math"
	"sort"
	"strings"

	"github.com/invoxhq/invox/internal/types"
)

// Build renders tokens into a multi-line text grid.
//
// Tokens are grouped into visual rows by vertical proximity: a token joins the
// first existing row (in creation order) whose anchor is within tolerance of
// its Top, otherwise it starts a new row anchored at its own Top. Rows are
// emitted top to bottom; within a row tokens are placed left to right at
// column floor(X*scaleFactor), padded with spaces from the current position.
// Overlapping or adjacent tokens get zero extra padding and may concatenate;
// that fallback is intentional and must not be tightened, since forced
// separation changes downstream extraction behavior.
//
// Build is deterministic for identical input (stable sorts, explicit
// tie-breaks on original input order) and never fails: garbage coordinates
// produce a garbage but deterministic grid.
func Build(tokens []types.PositionedToken, tolerancePx, scaleFactor float64) string {
	if len(tokens) == 0 {
		return ""
	}

	type row struct {
		anchor float64
		idx    []int
	}
	var rows []*row

	for i, tok := range tokens {
		var matched *row
		for _, r := range rows {
			if math.Abs(r.anchor-tok.Top) <= tolerancePx {
				matched = r
				break
			}
		}
		if matched == nil {
			matched = &row{anchor: tok.Top}
			rows = append(rows, matched)
		}
		matched.idx = append(matched.idx, i)
	}

	// Top of page first. SliceStable keeps creation order for equal anchors.
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].anchor < rows[b].anchor
	})

	var lines []string
	for _, r := range rows {
		sort.SliceStable(r.idx, func(a, b int) bool {
			return tokens[r.idx[a]].X < tokens[r.idx[b]].X
		})

		var sb strings.Builder
		currentCol := 0
		for _, i := range r.idx {
			tok := tokens[i]
			targetCol := int(math.Floor(tok.X * scaleFactor))
			padding := targetCol - currentCol
			if padding < 0 {
				padding = 0
			}
			sb.WriteString(strings.Repeat(" ", padding))
			sb.WriteString(tok.Text)
			currentCol += padding + len([]rune(tok.Text))
		}

		line := sb.String()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
