package ingest

import (
	"sort"
	"strings"

	"github.com/invoxhq/invox/internal/types"
)

// textChunk is a raw positioned text fragment from the PDF content stream.
// Most producers emit one chunk per glyph run, often a single character.
type textChunk struct {
	S        string
	X        float64 // left edge, from page left
	Y        float64 // baseline, from page bottom
	W        float64 // advance width
	FontSize float64
}

// baselineTolerance groups chunks onto the same text line when their
// baselines differ by at most this many points.
const baselineTolerance = 2.0

// assembleTokens merges per-glyph chunks into word tokens. Chunks are grouped
// by baseline, ordered by X, and joined while the horizontal gap between a
// chunk and the previous one stays below a font-size-relative threshold.
// Y is flipped into a top-down coordinate using the page height.
func assembleTokens(chunks []textChunk, height float64) []types.PositionedToken {
	if len(chunks) == 0 {
		return nil
	}

	type line struct {
		y      float64
		chunks []textChunk
	}
	var lines []*line

	for _, c := range chunks {
		if strings.TrimSpace(c.S) == "" {
			continue
		}
		var match *line
		for _, l := range lines {
			if abs(l.y-c.Y) <= baselineTolerance {
				match = l
				break
			}
		}
		if match == nil {
			match = &line{y: c.Y}
			lines = append(lines, match)
		}
		match.chunks = append(match.chunks, c)
	}

	var tokens []types.PositionedToken
	for _, l := range lines {
		sort.SliceStable(l.chunks, func(i, j int) bool {
			return l.chunks[i].X < l.chunks[j].X
		})

		var (
			word  strings.Builder
			start float64
			endX  float64
			open  bool
		)
		flush := func() {
			if !open {
				return
			}
			tokens = append(tokens, types.PositionedToken{
				Text: word.String(),
				X:    start,
				Top:  height - l.y,
			})
			word.Reset()
			open = false
		}

		for _, c := range l.chunks {
			if open && c.X-endX > wordGap(c.FontSize) {
				flush()
			}
			if !open {
				start = c.X
				open = true
			}
			word.WriteString(c.S)
			endX = c.X + c.W
		}
		flush()
	}

	return tokens
}

// wordGap is the maximum horizontal space still considered intra-word.
func wordGap(fontSize float64) float64 {
	gap := fontSize * 0.3
	if gap < 1.0 {
		gap = 1.0
	}
	return gap
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
