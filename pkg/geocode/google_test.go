package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleGeocode_Rooftop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [{
				"geometry": {
					"location": {"lat": 38.8977, "lng": -77.0365},
					"location_type": "ROOFTOP"
				},
				"formatted_address": "1600 Pennsylvania Avenue NW, Washington, DC 20500"
			}]
		}`)
	}))
	defer srv.Close()

	p := NewGoogleProvider(newRewriteClient(srv.URL, googleGeocodeURL), newTestLimiter(), "test-key")
	result, err := p.Geocode(context.Background(), AddressInput{Query: "1600 Pennsylvania Ave NW"})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.InDelta(t, 38.8977, result.Latitude, 0.0001)
	assert.Equal(t, "google", result.Source)
	assert.Equal(t, "rooftop", result.Quality)
	assert.Equal(t, "1600 Pennsylvania Avenue NW, Washington, DC 20500", result.DisplayName)
}

func TestGoogleGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer srv.Close()

	p := NewGoogleProvider(newRewriteClient(srv.URL, googleGeocodeURL), newTestLimiter(), "test-key")
	result, err := p.Geocode(context.Background(), AddressInput{Query: "000 Nonexistent"})
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestGoogleGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewGoogleProvider(newRewriteClient(srv.URL, googleGeocodeURL), newTestLimiter(), "test-key")
	_, err := p.Geocode(context.Background(), AddressInput{Query: "123 Main St"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestGoogleGeocode_NoKey(t *testing.T) {
	p := NewGoogleProvider(http.DefaultClient, newTestLimiter(), "")
	assert.False(t, p.Available())

	_, err := p.Geocode(context.Background(), AddressInput{Query: "123 Main St"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestGoogleLocationTypeToQuality(t *testing.T) {
	tests := []struct {
		locType  string
		expected string
	}{
		{"ROOFTOP", "rooftop"},
		{"RANGE_INTERPOLATED", "range"},
		{"GEOMETRIC_CENTER", "centroid"},
		{"APPROXIMATE", "approximate"},
		{"", "approximate"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, googleLocationTypeToQuality(tt.locType), "location_type=%s", tt.locType)
	}
}
