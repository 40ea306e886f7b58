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

func TestCensusGeocode_Success(t *testing.T) {
	var gotAddress string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"result": {
				"addressMatches": [{
					"coordinates": {"x": -77.0365, "y": 38.8977},
					"matchedAddress": "1600 PENNSYLVANIA AVE NW, WASHINGTON, DC, 20500"
				}]
			}
		}`)
	}))
	defer srv.Close()

	p := NewCensusProvider(newRewriteClient(srv.URL, censusOneLineURL), newTestLimiter())
	result, err := p.Geocode(context.Background(), AddressInput{
		Street: "1600 Pennsylvania Ave NW", City: "Washington", State: "DC", ZipCode: "20500",
	})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.InDelta(t, 38.8977, result.Latitude, 0.0001)
	assert.InDelta(t, -77.0365, result.Longitude, 0.0001)
	assert.Equal(t, "census", result.Source)
	assert.Equal(t, "rooftop", result.Quality)
	assert.Equal(t, "1600 Pennsylvania Ave NW, Washington, DC, 20500", gotAddress)
}

func TestCensusGeocode_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"result": {"addressMatches": []}}`)
	}))
	defer srv.Close()

	p := NewCensusProvider(newRewriteClient(srv.URL, censusOneLineURL), newTestLimiter())
	result, err := p.Geocode(context.Background(), AddressInput{Query: "123 Nowhere St"})
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Equal(t, "census", result.Source)
}

func TestCensusGeocode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewCensusProvider(newRewriteClient(srv.URL, censusOneLineURL), newTestLimiter())
	_, err := p.Geocode(context.Background(), AddressInput{Query: "123 Main St"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestFormatOneLine(t *testing.T) {
	assert.Equal(t, "123 Main St", formatOneLine(AddressInput{Query: "  123 Main St "}))
	assert.Equal(t, "1 A St, Town, CA", formatOneLine(AddressInput{Street: "1 A St", City: "Town", State: "CA"}))
	assert.Equal(t, "", formatOneLine(AddressInput{}))
}
