// Package local implements the platform collaborators over PDF files on disk,
// with annotations kept in SQLite and artifacts written to a directory.
package local

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tsawler/tabula"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/model"
	"github.com/sells-group/address-mapper/internal/platform"
)

// PDFReader reads text and positioned lines from a PDF. Pages are 1-based.
type PDFReader interface {
	PageCount(path string) (int, error)
	PageText(path string, page int) (string, error)
	PageLines(path string, page int) ([]model.Position, error)
}

// TabulaReader is a PDFReader backed by github.com/tsawler/tabula.
type TabulaReader struct{}

// PageCount implements PDFReader.
func (TabulaReader) PageCount(path string) (int, error) {
	ext := tabula.Open(path)
	defer ext.Close() //nolint:errcheck
	n, err := ext.PageCount()
	if err != nil {
		return 0, eris.Wrapf(err, "local: page count %s", path)
	}
	return n, nil
}

// PageText implements PDFReader.
func (TabulaReader) PageText(path string, page int) (string, error) {
	text, warnings, err := tabula.Open(path).Pages(page).Text()
	if err != nil {
		return "", eris.Wrapf(err, "local: page %d text %s", page, path)
	}
	if len(warnings) > 0 {
		zap.L().Debug("local: pdf text warnings",
			zap.String("path", path),
			zap.Int("page", page),
			zap.Int("warnings", len(warnings)),
		)
	}
	return text, nil
}

// PageLines implements PDFReader. Each detected line becomes one Position in
// PDF user space (origin bottom-left).
func (TabulaReader) PageLines(path string, page int) ([]model.Position, error) {
	lines, err := tabula.Open(path).Pages(page).Lines()
	if err != nil {
		return nil, eris.Wrapf(err, "local: page %d lines %s", page, path)
	}
	positions := make([]model.Position, 0, len(lines))
	for _, l := range lines {
		positions = append(positions, model.Position{
			Text: l.Text,
			X1:   l.BBox.X,
			Y1:   l.BBox.Y,
			X2:   l.BBox.X + l.BBox.Width,
			Y2:   l.BBox.Y + l.BBox.Height,
		})
	}
	return positions, nil
}

// Source yields the PDFs in a directory, or an explicit list of files.
type Source struct {
	dir    string
	files  []string
	reader PDFReader
	store  *AnnotationStore
}

var _ platform.Source = (*Source)(nil)

// NewSource creates a Source. When files is non-empty dir is ignored.
func NewSource(dir string, files []string, reader PDFReader, store *AnnotationStore) *Source {
	if reader == nil {
		reader = TabulaReader{}
	}
	return &Source{dir: dir, files: files, reader: reader, store: store}
}

// Documents implements platform.Source. Files are returned sorted by name.
func (s *Source) Documents(ctx context.Context) ([]platform.Document, error) {
	paths, err := s.paths()
	if err != nil {
		return nil, err
	}

	docs := make([]platform.Document, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := s.reader.PageCount(p)
		if err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		docs = append(docs, &Document{
			path:   p,
			reader: s.reader,
			store:  s.store,
			meta: model.Document{
				ID:        id,
				Title:     id,
				Slug:      id,
				PageCount: n,
			},
		})
	}
	zap.L().Info("local: documents selected", zap.Int("count", len(docs)))
	return docs, nil
}

func (s *Source) paths() ([]string, error) {
	if len(s.files) > 0 {
		out := append([]string(nil), s.files...)
		sort.Strings(out)
		return out, nil
	}
	if s.dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "local: read dir %s", s.dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Document is a PDF file on disk.
type Document struct {
	path   string
	meta   model.Document
	reader PDFReader
	store  *AnnotationStore
}

var _ platform.Document = (*Document)(nil)

// Info implements platform.Document.
func (d *Document) Info() model.Document { return d.meta }

// PageText implements platform.Document.
func (d *Document) PageText(_ context.Context, page int) (string, error) {
	if err := d.checkPage(page); err != nil {
		return "", err
	}
	return d.reader.PageText(d.path, page)
}

// PagePositions implements platform.Document.
func (d *Document) PagePositions(_ context.Context, page int) ([]model.Position, error) {
	if err := d.checkPage(page); err != nil {
		return nil, err
	}
	return d.reader.PageLines(d.path, page)
}

// CreateAnnotation implements platform.Document.
func (d *Document) CreateAnnotation(ctx context.Context, req platform.AnnotationRequest) (model.Annotation, error) {
	if d.store == nil {
		return model.Annotation{}, eris.New("local: no annotation store configured")
	}
	if err := req.Validate(d.meta.PageCount); err != nil {
		return model.Annotation{}, err
	}
	return d.store.Create(ctx, d.meta.ID, req)
}

func (d *Document) checkPage(page int) error {
	if page < 1 || page > d.meta.PageCount {
		return eris.Errorf("local: page %d out of range (1-%d) for %s", page, d.meta.PageCount, d.meta.ID)
	}
	return nil
}
