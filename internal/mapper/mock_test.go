package mapper

import (
	"context"
	"errors"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/address-mapper/internal/model"
	"github.com/sells-group/address-mapper/internal/platform"
	"github.com/sells-group/address-mapper/pkg/geocode"
)

// --- Geocoder Mock ---

type mockGeocoder struct {
	mock.Mock
	events *[]string
}

func (m *mockGeocoder) Geocode(ctx context.Context, addr geocode.AddressInput) (*geocode.Result, error) {
	if m.events != nil {
		*m.events = append(*m.events, "geocode:"+addr.Query)
	}
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocode.Result), args.Error(1)
}

// BatchGeocode goes through Geocode one address at a time, like the cascade
// client, so expectations and events are set per address.
func (m *mockGeocoder) BatchGeocode(ctx context.Context, addrs []geocode.AddressInput) ([]geocode.Result, error) {
	results := make([]geocode.Result, len(addrs))
	for i, a := range addrs {
		r, err := m.Geocode(ctx, a)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			continue
		}
		if r != nil {
			results[i] = *r
		}
	}
	return results, nil
}

// batchOnlyGeocoder answers BatchGeocode from a fixed slice and fails every
// single lookup.
type batchOnlyGeocoder struct {
	results []geocode.Result
	err     error
	batches [][]geocode.AddressInput
}

func (g *batchOnlyGeocoder) Geocode(context.Context, geocode.AddressInput) (*geocode.Result, error) {
	return nil, errors.New("single lookup not expected")
}

func (g *batchOnlyGeocoder) BatchGeocode(_ context.Context, addrs []geocode.AddressInput) ([]geocode.Result, error) {
	g.batches = append(g.batches, addrs)
	return g.results, g.err
}

func hit(lat, lon float64) *geocode.Result {
	return &geocode.Result{Latitude: lat, Longitude: lon, Source: geocode.ProviderNominatim, Matched: true}
}

func miss() *geocode.Result {
	return &geocode.Result{Source: geocode.ProviderNominatim}
}

func query(q string) geocode.AddressInput {
	return geocode.AddressInput{Query: q}
}

// --- Fake Document ---

// fakeDoc serves page text and one position per text line, and records the
// annotations it is asked to create.
type fakeDoc struct {
	info        model.Document
	pages       []string
	textErr     error
	positionErr error
	annotateErr error

	positionCalls int
	created       []platform.AnnotationRequest
	events        *[]string
}

func newFakeDoc(id, title string, pages ...string) *fakeDoc {
	return &fakeDoc{
		info:  model.Document{ID: id, Title: title, Slug: id, PageCount: len(pages)},
		pages: pages,
	}
}

func (d *fakeDoc) Info() model.Document { return d.info }

func (d *fakeDoc) PageText(_ context.Context, page int) (string, error) {
	if d.textErr != nil {
		return "", d.textErr
	}
	return d.pages[page-1], nil
}

func (d *fakeDoc) PagePositions(_ context.Context, page int) ([]model.Position, error) {
	d.positionCalls++
	if d.positionErr != nil {
		return nil, d.positionErr
	}
	var out []model.Position
	for i, line := range strings.Split(d.pages[page-1], "\n") {
		y := float64(i) * 0.05
		out = append(out, model.Position{Text: line, X1: 0.1, Y1: y, X2: 0.9, Y2: y + 0.04})
	}
	return out, nil
}

func (d *fakeDoc) CreateAnnotation(_ context.Context, req platform.AnnotationRequest) (model.Annotation, error) {
	if d.annotateErr != nil {
		return model.Annotation{}, d.annotateErr
	}
	if d.events != nil {
		*d.events = append(*d.events, "annotate:"+req.Content)
	}
	d.created = append(d.created, req)
	id := d.info.ID + "-" + string(rune('a'+len(d.created)-1))
	return model.Annotation{
		ID:         id,
		DocumentID: d.info.ID,
		Page:       req.Page,
		URL:        "https://dc.example/documents/" + d.info.ID + "/annotations/" + id,
	}, nil
}
