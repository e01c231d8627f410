package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

const maxSheetBytes = 16 << 20

// HTTPSource fetches a CSV export of the catalog sheet, e.g. a published
// Google Sheet (".../export?format=csv").
type HTTPSource struct {
	url         string
	credentials string
	client      *http.Client
}

func NewHTTPSource(url, credentials string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: url, credentials: credentials, client: client}
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]model.RawRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	if s.credentials != "" {
		req.Header.Set("Authorization", "Bearer "+s.credentials)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("catalog source returned status %d", resp.StatusCode)
	}

	return ParseCSV(io.LimitReader(resp.Body, maxSheetBytes))
}
