package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/address-mapper/internal/model"
)

func TestLocate_SingleToken(t *testing.T) {
	positions := []model.Position{
		{Text: "Tenant", X1: 1, Y1: 1, X2: 2, Y2: 2},
		{Text: "Premises: 123 Main St", X1: 3, Y1: 3, X2: 9, Y2: 4},
		{Text: "123 Main St again", X1: 5, Y1: 5, X2: 6, Y2: 6},
	}
	got, ok := locate(positions, "123 Main St")
	require.True(t, ok)
	assert.Equal(t, positions[1], got)
}

func TestLocate_PrefersSingleTokenOverSpan(t *testing.T) {
	positions := []model.Position{
		{Text: "123"}, {Text: "Main"}, {Text: "St"},
		{Text: "see 123 Main St", X1: 7},
	}
	got, ok := locate(positions, "123 Main St")
	require.True(t, ok)
	assert.Equal(t, 7.0, got.X1)
}

func TestLocate_WordTokensMerged(t *testing.T) {
	positions := []model.Position{
		{Text: "Ship", X1: 0.05, Y1: 0.10, X2: 0.09, Y2: 0.12},
		{Text: "to", X1: 0.10, Y1: 0.10, X2: 0.12, Y2: 0.12},
		{Text: "123", X1: 0.13, Y1: 0.10, X2: 0.16, Y2: 0.12},
		{Text: "Main", X1: 0.17, Y1: 0.09, X2: 0.22, Y2: 0.12},
		{Text: "St,", X1: 0.23, Y1: 0.10, X2: 0.26, Y2: 0.13},
		{Text: "Springfield", X1: 0.27, Y1: 0.10, X2: 0.38, Y2: 0.12},
	}
	got, ok := locate(positions, "123 Main St")
	require.True(t, ok)
	assert.Equal(t, "123 Main St,", got.Text)
	assert.InDelta(t, 0.13, got.X1, 1e-9)
	assert.InDelta(t, 0.09, got.Y1, 1e-9)
	assert.InDelta(t, 0.26, got.X2, 1e-9)
	assert.InDelta(t, 0.13, got.Y2, 1e-9)
}

func TestLocate_SpanStartsAtAddress(t *testing.T) {
	var positions []model.Position
	for i, w := range []string{"Please", "ship", "the", "goods", "to", "123", "Main", "St"} {
		x := float64(i)
		positions = append(positions, model.Position{Text: w, X1: x, Y1: 0, X2: x + 0.5, Y2: 1})
	}
	got, ok := locate(positions, "123 Main St")
	require.True(t, ok)
	assert.Equal(t, "123 Main St", got.Text)
	assert.InDelta(t, 5.0, got.X1, 1e-9)
	assert.InDelta(t, 7.5, got.X2, 1e-9)
}

func TestLocate_SpanKeepsPartialLeadingToken(t *testing.T) {
	positions := []model.Position{
		{Text: "at", X1: 0, X2: 1},
		{Text: "#123", X1: 2, X2: 3},
		{Text: "Main", X1: 4, X2: 5},
		{Text: "St", X1: 6, X2: 7},
	}
	got, ok := locate(positions, "123 Main St")
	require.True(t, ok)
	assert.Equal(t, "#123 Main St", got.Text)
	assert.InDelta(t, 2.0, got.X1, 1e-9)
}

func TestLocate_NormalizesTokenText(t *testing.T) {
	positions := []model.Position{{Text: "１２３ Main St"}}
	_, ok := locate(positions, "123 Main St")
	assert.True(t, ok)
}

func TestLocate_NoMatch(t *testing.T) {
	_, ok := locate([]model.Position{{Text: "nothing here"}}, "123 Main St")
	assert.False(t, ok)

	_, ok = locate(nil, "123 Main St")
	assert.False(t, ok)

	_, ok = locate([]model.Position{{Text: "x"}}, "")
	assert.False(t, ok)
}
