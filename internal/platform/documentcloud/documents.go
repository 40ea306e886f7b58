package documentcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/address-mapper/internal/model"
	"github.com/sells-group/address-mapper/internal/platform"
)

// documentResponse is the API representation of a document.
type documentResponse struct {
	ID           json.Number `json:"id"`
	Title        string      `json:"title"`
	Slug         string      `json:"slug"`
	PageCount    int         `json:"page_count"`
	AssetURL     string      `json:"asset_url"`
	CanonicalURL string      `json:"canonical_url"`
}

type searchResponse struct {
	Next    *string            `json:"next"`
	Results []documentResponse `json:"results"`
}

// positionResponse is one entry of a page's position.json.
type positionResponse struct {
	Text string  `json:"text"`
	X1   float64 `json:"x1"`
	X2   float64 `json:"x2"`
	Y1   float64 `json:"y1"`
	Y2   float64 `json:"y2"`
}

// Document is a DocumentCloud document bound to a client.
type Document struct {
	client   *Client
	meta     model.Document
	assetURL string
}

var _ platform.Document = (*Document)(nil)

// GetDocument fetches document metadata by ID.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/documents/%s/", c.baseURL, url.PathEscape(id)), true)
	if err != nil {
		return nil, eris.Wrapf(err, "documentcloud: get document %s", id)
	}
	var dr documentResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, eris.Wrapf(err, "documentcloud: decode document %s", id)
	}
	return c.newDocument(dr), nil
}

// Search returns every document matching query, following pagination.
func (c *Client) Search(ctx context.Context, query string) ([]*Document, error) {
	params := url.Values{"q": {query}, "per_page": {"100"}}
	next := fmt.Sprintf("%s/documents/search/?%s", c.baseURL, params.Encode())

	var docs []*Document
	for next != "" {
		body, err := c.get(ctx, next, true)
		if err != nil {
			return nil, eris.Wrap(err, "documentcloud: search")
		}
		var sr searchResponse
		if err := json.Unmarshal(body, &sr); err != nil {
			return nil, eris.Wrap(err, "documentcloud: decode search")
		}
		for _, dr := range sr.Results {
			docs = append(docs, c.newDocument(dr))
		}
		next = ""
		if sr.Next != nil {
			next = *sr.Next
		}
	}
	return docs, nil
}

func (c *Client) newDocument(dr documentResponse) *Document {
	asset := dr.AssetURL
	if asset == "" {
		asset = c.assetURL
	}
	if !strings.HasSuffix(asset, "/") {
		asset += "/"
	}
	return &Document{
		client:   c,
		assetURL: asset,
		meta: model.Document{
			ID:           dr.ID.String(),
			Title:        dr.Title,
			Slug:         dr.Slug,
			PageCount:    dr.PageCount,
			CanonicalURL: dr.CanonicalURL,
		},
	}
}

// Info implements platform.Document.
func (d *Document) Info() model.Document { return d.meta }

func (d *Document) pageURL(page int, ext string) string {
	return fmt.Sprintf("%sdocuments/%s/pages/%s-p%d.%s", d.assetURL, d.meta.ID, d.meta.Slug, page, ext)
}

// PageText implements platform.Document.
func (d *Document) PageText(ctx context.Context, page int) (string, error) {
	if err := d.checkPage(page); err != nil {
		return "", err
	}
	// Public assets are served without auth; private ones are redirected by the API.
	body, err := d.client.get(ctx, d.pageURL(page, "txt"), true)
	if err != nil {
		return "", eris.Wrapf(err, "documentcloud: page %d text", page)
	}
	return string(body), nil
}

// PagePositions implements platform.Document.
func (d *Document) PagePositions(ctx context.Context, page int) ([]model.Position, error) {
	if err := d.checkPage(page); err != nil {
		return nil, err
	}
	body, err := d.client.get(ctx, d.pageURL(page, "position.json"), true)
	if err != nil {
		return nil, eris.Wrapf(err, "documentcloud: page %d positions", page)
	}
	var raw []positionResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrapf(err, "documentcloud: decode page %d positions", page)
	}
	positions := make([]model.Position, len(raw))
	for i, p := range raw {
		positions[i] = model.Position{Text: p.Text, X1: p.X1, Y1: p.Y1, X2: p.X2, Y2: p.Y2}
	}
	return positions, nil
}

func (d *Document) checkPage(page int) error {
	if page < 1 || page > d.meta.PageCount {
		return eris.Errorf("documentcloud: page %d out of range (1-%d) for document %s", page, d.meta.PageCount, d.meta.ID)
	}
	return nil
}
