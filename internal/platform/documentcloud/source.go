package documentcloud

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/platform"
)

// Source selects documents by explicit IDs or, when none are given, by a
// search query. With neither it yields no documents.
type Source struct {
	client *Client
	ids    []string
	query  string
}

var _ platform.Source = (*Source)(nil)

// NewSource creates a Source.
func NewSource(c *Client, ids []string, query string) *Source {
	return &Source{client: c, ids: ids, query: query}
}

// Documents implements platform.Source.
func (s *Source) Documents(ctx context.Context) ([]platform.Document, error) {
	var docs []platform.Document
	switch {
	case len(s.ids) > 0:
		for _, id := range s.ids {
			d, err := s.client.GetDocument(ctx, id)
			if err != nil {
				return nil, err
			}
			docs = append(docs, d)
		}
	case s.query != "":
		found, err := s.client.Search(ctx, s.query)
		if err != nil {
			return nil, err
		}
		for _, d := range found {
			docs = append(docs, d)
		}
	}
	zap.L().Info("documentcloud: documents selected", zap.Int("count", len(docs)))
	return docs, nil
}

func decodeJSON(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "documentcloud: decode response")
	}
	return nil
}
