// Package webmap renders geocoded records as a self-contained Leaflet map.
package webmap

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/address-mapper/internal/model"
)

// ViewMode selects how the initial map view is chosen.
type ViewMode string

// View modes.
const (
	ViewFit   ViewMode = "fit"
	ViewFirst ViewMode = "first"
	ViewWorld ViewMode = "world"
)

// World view used when nothing resolved or when ViewWorld is requested.
const (
	WorldLat  = 20.0
	WorldLon  = 0.0
	WorldZoom = 2
)

// Default tile layer.
const (
	DefaultTileURL     = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
)

// ParseViewMode parses a view mode name. An empty name yields ViewFit.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewFit:
		return ViewFit, nil
	case ViewFirst:
		return ViewFirst, nil
	case ViewWorld:
		return ViewWorld, nil
	default:
		return "", eris.Errorf("webmap: unknown view %q", s)
	}
}

// Options configures map construction.
type Options struct {
	Title       string
	View        ViewMode
	Zoom        int // used by ViewFirst and for a single fitted marker
	TileURL     string
	Attribution string
}

// DefaultOptions returns the defaults.
func DefaultOptions() Options {
	return Options{
		Title:       "Address map",
		View:        ViewFit,
		Zoom:        12,
		TileURL:     DefaultTileURL,
		Attribution: DefaultAttribution,
	}
}

// View is the initial viewport. Bounds is set only when fitting markers.
type View struct {
	Lat    float64
	Lon    float64
	Zoom   int
	Bounds *geom.Bounds
}

// Map is a set of markers and an initial view.
type Map struct {
	opts     Options
	view     View
	features *geojson.FeatureCollection
}

// Build places one marker per geocoded record, in record order.
func Build(records []model.Record, opts Options) (*Map, error) {
	defaults := DefaultOptions()
	if opts.Title == "" {
		opts.Title = defaults.Title
	}
	if opts.View == "" {
		opts.View = defaults.View
	}
	if opts.Zoom <= 0 {
		opts.Zoom = defaults.Zoom
	}
	if opts.TileURL == "" {
		opts.TileURL = defaults.TileURL
	}
	if opts.Attribution == "" {
		opts.Attribution = defaults.Attribution
	}
	if _, err := ParseViewMode(string(opts.View)); err != nil {
		return nil, err
	}

	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	bounds := geom.NewBounds(geom.XY)
	for _, r := range records {
		if !r.Geocoded() {
			continue
		}
		pt := geom.NewPointFlat(geom.XY, []float64{*r.Longitude, *r.Latitude})
		bounds.Extend(pt)
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: pt,
			Properties: map[string]any{
				"address":  r.Address,
				"url":      r.AnnotationURL,
				"document": r.DocumentTitle,
				"page":     r.Page,
			},
		})
	}

	return &Map{
		opts:     opts,
		view:     chooseView(fc.Features, bounds, opts),
		features: fc,
	}, nil
}

func chooseView(features []*geojson.Feature, bounds *geom.Bounds, opts Options) View {
	world := View{Lat: WorldLat, Lon: WorldLon, Zoom: WorldZoom}
	if len(features) == 0 {
		return world
	}

	first := features[0].Geometry.FlatCoords()
	switch opts.View {
	case ViewWorld:
		return world
	case ViewFirst:
		return View{Lat: first[1], Lon: first[0], Zoom: opts.Zoom}
	}

	if len(features) == 1 {
		return View{Lat: first[1], Lon: first[0], Zoom: opts.Zoom}
	}
	return View{
		Lat:    (bounds.Min(1) + bounds.Max(1)) / 2,
		Lon:    (bounds.Min(0) + bounds.Max(0)) / 2,
		Zoom:   opts.Zoom,
		Bounds: bounds,
	}
}

// Markers returns the number of markers on the map.
func (m *Map) Markers() int { return len(m.features.Features) }

// View returns the initial viewport.
func (m *Map) View() View { return m.view }

// GeoJSON returns the markers as a GeoJSON FeatureCollection.
func (m *Map) GeoJSON() ([]byte, error) {
	data, err := json.Marshal(m.features)
	if err != nil {
		return nil, eris.Wrap(err, "webmap: encode geojson")
	}
	return data, nil
}
