package mapper

import (
	"math"
	"strings"

	"github.com/sells-group/address-mapper/internal/extract"
	"github.com/sells-group/address-mapper/internal/model"
)

// maxSpan bounds how many consecutive tokens are joined when no single token
// contains a candidate.
const maxSpan = 16

// locate returns the box of the first token containing candidate. Platforms
// that report one token per word never hold a whole address in one token, so
// when no single token matches, the first run of consecutive tokens whose
// joined text contains the candidate is used, trimmed of leading tokens the
// candidate does not need, and its boxes are merged.
func locate(positions []model.Position, candidate string) (model.Position, bool) {
	if candidate == "" || len(positions) == 0 {
		return model.Position{}, false
	}

	texts := make([]string, len(positions))
	for i, p := range positions {
		texts[i] = extract.Normalize(p.Text)
		if strings.Contains(texts[i], candidate) {
			return positions[i], true
		}
	}

	for i := range positions {
		for j := i + 1; j < len(positions) && j-i < maxSpan; j++ {
			if !spanContains(texts[i:j+1], candidate) {
				continue
			}
			start := i
			for start < j && spanContains(texts[start+1:j+1], candidate) {
				start++
			}
			return union(positions[start : j+1]), true
		}
	}
	return model.Position{}, false
}

func spanContains(texts []string, candidate string) bool {
	return strings.Contains(strings.Join(texts, " "), candidate)
}

func union(span []model.Position) model.Position {
	out := model.Position{
		X1: math.Inf(1), Y1: math.Inf(1),
		X2: math.Inf(-1), Y2: math.Inf(-1),
	}
	parts := make([]string, 0, len(span))
	for _, p := range span {
		parts = append(parts, p.Text)
		out.X1 = math.Min(out.X1, p.X1)
		out.Y1 = math.Min(out.Y1, p.Y1)
		out.X2 = math.Max(out.X2, p.X2)
		out.Y2 = math.Max(out.Y2, p.Y2)
	}
	out.Text = strings.Join(parts, " ")
	return out
}
