package model

// Document is a read-only view of a document owned by the hosting platform.
type Document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	PageCount    int    `json:"page_count"`
	CanonicalURL string `json:"canonical_url"`
}

// Position is a text token on a page together with its bounding box.
// DocumentCloud reports coordinates normalized to the page (0..1, origin
// top-left); local PDFs report PDF user-space points.
type Position struct {
	Text string  `json:"text"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
}

// Annotation is a platform-native note attached to a document page.
type Annotation struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"` // 1-based
	URL        string `json:"url"`
}
