package webmap

import (
	"bufio"
	"html/template"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map").setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
L.tileLayer({{.TileURL}}, {attribution: {{.Attribution}}, maxZoom: 19}).addTo(map);
var markers = {{.GeoJSON}};
L.geoJSON(markers, {
  onEachFeature: function (feature, layer) {
    var link = document.createElement("a");
    link.href = feature.properties.url;
    link.target = "_blank";
    link.textContent = feature.properties.address;
    layer.bindPopup(link);
  }
}).addTo(map);
{{- if .Bounds}}
map.fitBounds([[{{.MinLat}}, {{.MinLon}}], [{{.MaxLat}}, {{.MaxLon}}]], {padding: [24, 24]});
{{- end}}
</script>
</body>
</html>
`))

type pageData struct {
	Title       string
	Lat, Lon    float64
	Zoom        int
	TileURL     string
	Attribution string
	GeoJSON     template.JS
	Bounds      bool

	MinLat, MinLon, MaxLat, MaxLon float64
}

// WriteHTML renders the map as a single HTML page.
func (m *Map) WriteHTML(w io.Writer) error {
	data, err := m.GeoJSON()
	if err != nil {
		return err
	}

	pd := pageData{
		Title:       m.opts.Title,
		Lat:         m.view.Lat,
		Lon:         m.view.Lon,
		Zoom:        m.view.Zoom,
		TileURL:     m.opts.TileURL,
		Attribution: m.opts.Attribution,
		// encoding/json escapes <, > and & so the literal cannot close the script.
		GeoJSON: template.JS(data), //nolint:gosec
	}
	if b := m.view.Bounds; b != nil {
		pd.Bounds = true
		pd.MinLon, pd.MinLat = b.Min(0), b.Min(1)
		pd.MaxLon, pd.MaxLat = b.Max(0), b.Max(1)
	}

	if err := pageTemplate.Execute(w, pd); err != nil {
		return eris.Wrap(err, "webmap: render html")
	}
	return nil
}

// Save writes the map HTML to path.
func (m *Map) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "webmap: create file")
	}
	bw := bufio.NewWriter(f)
	if err := m.WriteHTML(bw); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "webmap: write file")
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "webmap: close file")
	}
	return nil
}
