package documentcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/sells-group/address-mapper/internal/model"
	"github.com/sells-group/address-mapper/internal/platform"
)

// noteRequest is the body of a note creation call. Page numbers are zero-based.
type noteRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	PageNumber int      `json:"page_number"`
	Access     string   `json:"access"`
	X1         *float64 `json:"x1,omitempty"`
	X2         *float64 `json:"x2,omitempty"`
	Y1         *float64 `json:"y1,omitempty"`
	Y2         *float64 `json:"y2,omitempty"`
}

type noteResponse struct {
	ID json.Number `json:"id"`
}

// CreateAnnotation implements platform.Document by creating a note. A nil Box
// creates a page-level note.
func (d *Document) CreateAnnotation(ctx context.Context, req platform.AnnotationRequest) (model.Annotation, error) {
	if err := req.Validate(d.meta.PageCount); err != nil {
		return model.Annotation{}, err
	}

	body := noteRequest{
		Title:      req.Title,
		Content:    req.Content,
		PageNumber: req.Page - 1,
		Access:     req.Access,
	}
	if b := req.Box; b != nil {
		body.X1, body.X2, body.Y1, body.Y2 = &b.X1, &b.X2, &b.Y1, &b.Y2
	}

	endpoint := fmt.Sprintf("%s/documents/%s/notes/", d.client.baseURL, url.PathEscape(d.meta.ID))
	var nr noteResponse
	if err := d.client.sendJSON(ctx, http.MethodPost, endpoint, body, &nr); err != nil {
		return model.Annotation{}, eris.Wrapf(err, "documentcloud: create note on %s page %d", d.meta.ID, req.Page)
	}

	noteID := nr.ID.String()
	return model.Annotation{
		ID:         noteID,
		DocumentID: d.meta.ID,
		Page:       req.Page,
		URL:        d.client.AnnotationURL(d.meta.ID, noteID),
	}, nil
}
