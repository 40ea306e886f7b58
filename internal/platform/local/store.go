package local

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/address-mapper/internal/model"
	"github.com/sells-group/address-mapper/internal/platform"
)

const annotationsMigration = `
CREATE TABLE IF NOT EXISTS annotations (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	page        INTEGER NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	access      TEXT NOT NULL,
	x1          REAL,
	y1          REAL,
	x2          REAL,
	y2          REAL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_annotations_document ON annotations (document_id, page);
`

// AnnotationStore persists annotations made on local documents.
type AnnotationStore struct {
	db      *sql.DB
	baseURL string
}

// NewAnnotationStore opens (and migrates) the store at dsn. baseURL prefixes
// the canonical annotation URLs.
func NewAnnotationStore(dsn, baseURL string) (*AnnotationStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "local: annotations open")
	}
	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		annotationsMigration,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrap(err, "local: annotations init")
		}
	}
	return &AnnotationStore{db: db, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// URL returns the canonical URL of an annotation.
func (s *AnnotationStore) URL(docID, id string) string {
	return fmt.Sprintf("%s/documents/%s/annotations/%s", s.baseURL, docID, id)
}

// Create inserts an annotation and returns its handle.
func (s *AnnotationStore) Create(ctx context.Context, docID string, req platform.AnnotationRequest) (model.Annotation, error) {
	id := uuid.New().String()

	var x1, y1, x2, y2 sql.NullFloat64
	if b := req.Box; b != nil {
		x1 = sql.NullFloat64{Float64: b.X1, Valid: true}
		y1 = sql.NullFloat64{Float64: b.Y1, Valid: true}
		x2 = sql.NullFloat64{Float64: b.X2, Valid: true}
		y2 = sql.NullFloat64{Float64: b.Y2, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO annotations (id, document_id, page, title, content, access, x1, y1, x2, y2)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, docID, req.Page, req.Title, req.Content, req.Access, x1, y1, x2, y2,
	)
	if err != nil {
		return model.Annotation{}, eris.Wrapf(err, "local: insert annotation on %s page %d", docID, req.Page)
	}

	return model.Annotation{
		ID:         id,
		DocumentID: docID,
		Page:       req.Page,
		URL:        s.URL(docID, id),
	}, nil
}

// StoredAnnotation is an annotation row as persisted.
type StoredAnnotation struct {
	model.Annotation
	Title   string
	Content string
	Access  string
	Box     *model.Position
}

// List returns the annotations on a document ordered by page.
func (s *AnnotationStore) List(ctx context.Context, docID string) ([]StoredAnnotation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page, title, content, access, x1, y1, x2, y2
		FROM annotations WHERE document_id = ? ORDER BY page, created_at, id`, docID)
	if err != nil {
		return nil, eris.Wrapf(err, "local: list annotations %s", docID)
	}
	defer rows.Close() //nolint:errcheck

	var out []StoredAnnotation
	for rows.Next() {
		var a StoredAnnotation
		var x1, y1, x2, y2 sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Page, &a.Title, &a.Content, &a.Access, &x1, &y1, &x2, &y2); err != nil {
			return nil, eris.Wrap(err, "local: scan annotation")
		}
		a.DocumentID = docID
		a.URL = s.URL(docID, a.ID)
		if x1.Valid && y1.Valid && x2.Valid && y2.Valid {
			a.Box = &model.Position{X1: x1.Float64, Y1: y1.Float64, X2: x2.Float64, Y2: y2.Float64}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "local: iterate annotations")
	}
	return out, nil
}

// Close closes the underlying database.
func (s *AnnotationStore) Close() error {
	return s.db.Close()
}
