package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidates_EmptyText(t *testing.T) {
	assert.Empty(t, Candidates("", DefaultOptions()))
	assert.Empty(t, Candidates("   \n\t", DefaultOptions()))
}

func TestCandidates_NoAddresses(t *testing.T) {
	text := "Minutes of the meeting. The committee approved the budget."
	assert.Empty(t, Candidates(text, DefaultOptions()))
}

func TestCandidates_SingleStreetAddress(t *testing.T) {
	got := Candidates("Our office is at 123 Main St, Springfield, IL", DefaultOptions())
	require.Len(t, got, 1)
	assert.Equal(t, "123 Main St", got[0])
}

func TestCandidates_DeduplicatesWithinPage(t *testing.T) {
	text := "Deliver to 123 Main St today. Again: deliver to 123 Main St tomorrow."
	got := Candidates(text, DefaultOptions())
	require.Len(t, got, 1)
	assert.Equal(t, "123 Main St", got[0])
}

func TestCandidates_Idempotent(t *testing.T) {
	text := "Offices: 42 Elm Street and 7 Oak Avenue. Mail: P.O. Box 1234."
	first := Candidates(text, DefaultOptions())
	second := Candidates(text, DefaultOptions())
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestCandidates_FullStreetSuffix(t *testing.T) {
	got := Candidates("Deliveries go to 123 Main Street, Springfield", DefaultOptions())
	require.Len(t, got, 1)
	assert.Equal(t, "123 Main Street", got[0])
}

func TestCandidates_CaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"123 main st"}, Candidates("ship to 123 main st today", DefaultOptions()))
	assert.Equal(t, []string{"123 MAIN ST"}, Candidates("SHIP TO 123 MAIN ST TODAY", DefaultOptions()))
}

func TestCandidates_SortedOutput(t *testing.T) {
	got := Candidates("See 900 Pine Road and 15 Birch Lane Drive nearby.", DefaultOptions())
	assert.IsNonDecreasing(t, got)
}

func TestCandidates_POBoxToggle(t *testing.T) {
	text := "Send payment to PO Box 5521 before the deadline."

	with := Candidates(text, Options{POBoxes: true})
	without := Candidates(text, Options{POBoxes: false})

	assert.NotEmpty(t, with)
	assert.Empty(t, without)
}

func TestNormalize_FullWidthDigits(t *testing.T) {
	assert.Equal(t, "123 Main St", Normalize("１２３ Main St"))
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123 Main St, ", "123 Main St"},
		{" 5 Oak Ave.", "5 Oak Ave"},
		{"\t", ""},
		{"PO Box 12;", "PO Box 12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clean(tt.in), "in=%q", tt.in)
	}
}
