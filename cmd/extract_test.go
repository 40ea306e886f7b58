//go:build !integration

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/address-mapper/internal/extract"
	"github.com/sells-group/address-mapper/internal/model"
	"github.com/sells-group/address-mapper/pkg/geocode"
)

type pagesReader map[int]string

func (r pagesReader) PageCount(string) (int, error) { return len(r), nil }

func (r pagesReader) PageText(_ string, page int) (string, error) { return r[page], nil }

func (r pagesReader) PageLines(string, int) ([]model.Position, error) { return nil, nil }

func TestPrintCandidates_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Our office is at 123 Main St, Springfield, IL"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, printCandidates(&buf, pagesReader{}, path, extract.DefaultOptions()))
	assert.Equal(t, "1\t123 Main St\n", buf.String())
}

func TestPrintCandidates_PDFPages(t *testing.T) {
	reader := pagesReader{
		1: "Cover page",
		2: "Deliver to 123 Main St today.",
	}

	var buf bytes.Buffer
	require.NoError(t, printCandidates(&buf, reader, "lease.PDF", extract.DefaultOptions()))
	assert.Equal(t, "2\t123 Main St\n", buf.String())
}

func TestPrintCandidates_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	err := printCandidates(&buf, pagesReader{}, filepath.Join(t.TempDir(), "nope.txt"), extract.DefaultOptions())
	assert.Error(t, err)
}

type stubGeocoder struct {
	results map[string]*geocode.Result
	err     error
}

func (s stubGeocoder) Geocode(_ context.Context, addr geocode.AddressInput) (*geocode.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.results[addr.Query]; ok {
		return r, nil
	}
	return &geocode.Result{Matched: false}, nil
}

func (s stubGeocoder) BatchGeocode(ctx context.Context, addrs []geocode.AddressInput) ([]geocode.Result, error) {
	out := make([]geocode.Result, 0, len(addrs))
	for _, a := range addrs {
		r, err := s.Geocode(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

func TestPrintGeocodes(t *testing.T) {
	gc := stubGeocoder{results: map[string]*geocode.Result{
		"123 Main St": {Latitude: 39.78, Longitude: -89.65, Source: "census", Matched: true},
	}}

	var buf bytes.Buffer
	require.NoError(t, printGeocodes(context.Background(), &buf, gc, []string{"123 Main St", "Nowhere"}))
	assert.Equal(t, "123 Main St\t39.780000\t-89.650000\tcensus\nNowhere\tno match\n", buf.String())
}

func TestPrintGeocodes_Error(t *testing.T) {
	var buf bytes.Buffer
	err := printGeocodes(context.Background(), &buf, stubGeocoder{err: errors.New("boom")}, []string{"x"})
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}
