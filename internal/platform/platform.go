// Package platform defines the document-hosting collaborators the address
// mapper reads from, annotates and uploads to.
package platform

import (
	"context"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/address-mapper/internal/model"
)

// Annotation access levels accepted by the hosting platforms.
const (
	AccessPrivate      = "private"
	AccessOrganization = "organization"
	AccessPublic       = "public"
)

// ValidAccess reports whether access is a recognized visibility level.
func ValidAccess(access string) bool {
	switch access {
	case AccessPrivate, AccessOrganization, AccessPublic:
		return true
	default:
		return false
	}
}

// AnnotationRequest describes an annotation to create on a document page.
type AnnotationRequest struct {
	Title   string
	Page    int // 1-based
	Content string
	Access  string
	// Box is the token to anchor the annotation to; nil creates a page-level note.
	Box *model.Position
}

// Validate checks the request before it is sent to a platform.
func (r AnnotationRequest) Validate(pageCount int) error {
	if r.Page < 1 || (pageCount > 0 && r.Page > pageCount) {
		return eris.Errorf("platform: page %d out of range (1-%d)", r.Page, pageCount)
	}
	if !ValidAccess(r.Access) {
		return eris.Errorf("platform: invalid access %q", r.Access)
	}
	return nil
}

// Source supplies the documents for a run.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

// Document exposes per-page text, positioned tokens and annotation creation.
// Pages are 1-based.
type Document interface {
	Info() model.Document
	PageText(ctx context.Context, page int) (string, error)
	PagePositions(ctx context.Context, page int) ([]model.Position, error)
	CreateAnnotation(ctx context.Context, req AnnotationRequest) (model.Annotation, error)
}

// Uploader hands a finished artifact to its destination.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) error
}

// Messenger publishes a final status message for the run.
type Messenger interface {
	SetMessage(ctx context.Context, msg string) error
}
