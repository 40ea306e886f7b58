package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Geocoded(t *testing.T) {
	r := Record{Address: "123 Main St"}
	assert.False(t, r.Geocoded())

	r.SetLocation(39.78, -89.65)
	assert.True(t, r.Geocoded())
	assert.InDelta(t, 39.78, *r.Latitude, 0.0001)
	assert.InDelta(t, -89.65, *r.Longitude, 0.0001)
}

func TestCountGeocoded(t *testing.T) {
	var located Record
	located.SetLocation(1, 2)

	records := []Record{{Address: "a"}, located, {Address: "b"}, located}
	assert.Equal(t, 2, CountGeocoded(records))
	assert.Equal(t, 0, CountGeocoded(nil))
}
