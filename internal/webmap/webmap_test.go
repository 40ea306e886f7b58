package webmap

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/address-mapper/internal/model"
)

func record(addr string, page int, lat, lon *float64) model.Record {
	return model.Record{
		Address:       addr,
		DocumentID:    "42",
		DocumentTitle: "Lease",
		Page:          page,
		AnnotationID:  addr,
		AnnotationURL: "https://dc.example/documents/42/annotations/" + strings.ReplaceAll(addr, " ", "-"),
		Latitude:      lat,
		Longitude:     lon,
	}
}

func f(v float64) *float64 { return &v }

type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

func decode(t *testing.T, m *Map) featureCollection {
	t.Helper()
	data, err := m.GeoJSON()
	require.NoError(t, err)
	var fc featureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	return fc
}

func TestBuild_MarkersOnlyForGeocodedRecords(t *testing.T) {
	records := []model.Record{
		record("123 Main St", 1, f(39.78), f(-89.65)),
		record("PO Box 12", 2, nil, nil),
		record("9 Elm St", 3, f(40.0), nil),
		record("456 Oak Ave", 4, f(39.76), f(-84.19)),
	}
	m, err := Build(records, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, m.Markers())

	fc := decode(t, m)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, "Point", first.Geometry.Type)
	assert.Equal(t, []float64{-89.65, 39.78}, first.Geometry.Coordinates)
	assert.Equal(t, "123 Main St", first.Properties["address"])
	assert.Equal(t, "https://dc.example/documents/42/annotations/123-Main-St", first.Properties["url"])
	assert.Equal(t, "Lease", first.Properties["document"])
	assert.Equal(t, float64(1), first.Properties["page"])
	assert.Equal(t, "456 Oak Ave", fc.Features[1].Properties["address"])
}

func TestBuild_NoResolvedRecordsFallsBackToWorldView(t *testing.T) {
	for _, mode := range []ViewMode{ViewFit, ViewFirst, ViewWorld} {
		opts := DefaultOptions()
		opts.View = mode

		m, err := Build([]model.Record{record("PO Box 12", 1, nil, nil)}, opts)
		require.NoError(t, err, mode)
		assert.Zero(t, m.Markers())
		assert.Equal(t, View{Lat: WorldLat, Lon: WorldLon, Zoom: WorldZoom}, m.View(), mode)

		m, err = Build(nil, opts)
		require.NoError(t, err)
		assert.Zero(t, m.Markers())
		assert.Equal(t, WorldZoom, m.View().Zoom)
	}
}

func TestBuild_ViewModes(t *testing.T) {
	records := []model.Record{
		record("a", 1, f(10), f(20)),
		record("b", 1, f(30), f(40)),
	}

	opts := DefaultOptions()
	opts.View = ViewFirst
	opts.Zoom = 9
	m, err := Build(records, opts)
	require.NoError(t, err)
	assert.Equal(t, View{Lat: 10, Lon: 20, Zoom: 9}, m.View())

	opts.View = ViewWorld
	m, err = Build(records, opts)
	require.NoError(t, err)
	assert.Equal(t, View{Lat: WorldLat, Lon: WorldLon, Zoom: WorldZoom}, m.View())

	opts.View = ViewFit
	m, err = Build(records, opts)
	require.NoError(t, err)
	v := m.View()
	require.NotNil(t, v.Bounds)
	assert.InDelta(t, 20, v.Lat, 1e-9)
	assert.InDelta(t, 30, v.Lon, 1e-9)
	assert.InDelta(t, 10, v.Bounds.Min(1), 1e-9)
	assert.InDelta(t, 40, v.Bounds.Max(0), 1e-9)
}

func TestBuild_FitSingleMarkerCentersOnIt(t *testing.T) {
	m, err := Build([]model.Record{record("a", 1, f(10), f(20))}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, View{Lat: 10, Lon: 20, Zoom: DefaultOptions().Zoom}, m.View())
}

func TestBuild_FillsDefaultsAndRejectsUnknownView(t *testing.T) {
	m, err := Build(nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), m.opts)

	_, err = Build(nil, Options{View: "satellite"})
	assert.Error(t, err)
}

func TestParseViewMode(t *testing.T) {
	v, err := ParseViewMode("")
	require.NoError(t, err)
	assert.Equal(t, ViewFit, v)

	v, err = ParseViewMode(" First ")
	require.NoError(t, err)
	assert.Equal(t, ViewFirst, v)

	_, err = ParseViewMode("globe")
	assert.Error(t, err)
}

func TestWriteHTML(t *testing.T) {
	records := []model.Record{
		record("123 Main St", 1, f(39.78), f(-89.65)),
		record("</script><b>x", 2, f(39.76), f(-84.19)),
	}
	m, err := Build(records, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.WriteHTML(&buf))
	out := buf.String()

	assert.Contains(t, out, "<title>Address map</title>")
	assert.Contains(t, out, "leaflet.js")
	assert.Contains(t, out, "L.geoJSON(markers")
	assert.Contains(t, out, "123 Main St")
	assert.Contains(t, out, "map.fitBounds(")
	assert.Contains(t, out, `link.target = "_blank"`)
	assert.Equal(t, 2, strings.Count(out, "</script>"), "address text must not close the script element")
}

func TestWriteHTML_EmptyMap(t *testing.T) {
	m, err := Build(nil, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.WriteHTML(&buf))
	out := buf.String()
	assert.Contains(t, out, `"features":[]`)
	assert.NotContains(t, out, "fitBounds")
	assert.Contains(t, out, "L.map(\"map\").setView([")
}

func TestSave(t *testing.T) {
	m, err := Build([]model.Record{record("123 Main St", 1, f(39.78), f(-89.65))}, DefaultOptions())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "map.html")
	require.NoError(t, m.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "123 Main St")

	assert.Error(t, m.Save(filepath.Join(t.TempDir(), "missing", "map.html")))
}
