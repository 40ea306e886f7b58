package model

// Record is one detected address on one document page. Every record
// corresponds to exactly one annotation created on that page.
type Record struct {
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	DocumentID    string   `json:"document_id"`
	DocumentTitle string   `json:"document_title"`
	Page          int      `json:"page"`
	AnnotationID  string   `json:"annotation_id"`
	AnnotationURL string   `json:"annotation_url"`
}

// Geocoded reports whether the record carries a resolved location.
func (r Record) Geocoded() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// SetLocation attaches a resolved location to the record.
func (r *Record) SetLocation(lat, lon float64) {
	r.Latitude = &lat
	r.Longitude = &lon
}

// CountGeocoded returns how many records carry a resolved location.
func CountGeocoded(records []Record) int {
	var n int
	for _, r := range records {
		if r.Geocoded() {
			n++
		}
	}
	return n
}
