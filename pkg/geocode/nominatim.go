package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const nominatimSearchURL = "https://nominatim.openstreetmap.org/search"

// nominatimPlace is one element of the Nominatim jsonv2 search response.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	AddressType string `json:"addresstype"`
}

// NominatimProvider geocodes via the OpenStreetMap Nominatim search API.
type NominatimProvider struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	email      string
}

// NewNominatimProvider creates a NominatimProvider sharing the given limiter.
func NewNominatimProvider(hc *http.Client, limiter *rate.Limiter, userAgent, email string) *NominatimProvider {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &NominatimProvider{httpClient: hc, limiter: limiter, userAgent: userAgent, email: email}
}

// Name implements Provider.
func (p *NominatimProvider) Name() string { return ProviderNominatim }

// Available implements Provider.
func (p *NominatimProvider) Available() bool { return true }

// Geocode implements Provider.
func (p *NominatimProvider) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	params := url.Values{
		"format": {"jsonv2"},
		"limit":  {"1"},
	}
	if q := strings.TrimSpace(addr.Query); q != "" {
		params.Set("q", q)
	} else {
		if addr.Street == "" && addr.City == "" && addr.State == "" && addr.ZipCode == "" {
			return &Result{Matched: false, Source: ProviderNominatim}, nil
		}
		setIfNotEmpty(params, "street", addr.Street)
		setIfNotEmpty(params, "city", addr.City)
		setIfNotEmpty(params, "state", addr.State)
		setIfNotEmpty(params, "postalcode", addr.ZipCode)
	}
	setIfNotEmpty(params, "email", p.email)

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim rate limit")
	}

	reqURL := nominatimSearchURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim build request")
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim read body")
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse response")
	}

	if len(places) == 0 {
		return &Result{Matched: false, Source: ProviderNominatim}, nil
	}

	place := places[0]
	lat, latErr := strconv.ParseFloat(place.Lat, 64)
	lon, lonErr := strconv.ParseFloat(place.Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, eris.Errorf("geocode: nominatim invalid coordinates %q,%q", place.Lat, place.Lon)
	}

	return &Result{
		Latitude:    lat,
		Longitude:   lon,
		Source:      ProviderNominatim,
		Quality:     nominatimTypeToQuality(place.AddressType, place.Type),
		DisplayName: place.DisplayName,
		Matched:     true,
	}, nil
}

// nominatimTypeToQuality maps the OSM place classification to our quality taxonomy.
func nominatimTypeToQuality(addressType, placeType string) string {
	t := strings.ToLower(addressType)
	if t == "" {
		t = strings.ToLower(placeType)
	}
	switch t {
	case "house", "building", "house_number":
		return "rooftop"
	case "road", "street", "residential":
		return "range"
	case "postcode", "suburb", "neighbourhood", "quarter":
		return "centroid"
	default:
		return "approximate"
	}
}

func setIfNotEmpty(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}
