package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/resensebox/Mindful-Libraries-sub000/core/config"
	"github.com/resensebox/Mindful-Libraries-sub000/core/db"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

// Source reads the raw tabular catalog.
type Source interface {
	Fetch(ctx context.Context) ([]model.RawRow, error)
	Name() string
}

// NewSource picks a Source from the scheme of cfg.SourceURL. The returned
// close func releases any connection pool and is never nil.
func NewSource(ctx context.Context, cfg config.CatalogConfig, dbCfg db.Config) (Source, func(), error) {
	u, err := url.Parse(cfg.SourceURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing catalog source url: %w", err)
	}

	noop := func() {}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		client := &http.Client{Timeout: cfg.Timeout}
		return NewHTTPSource(cfg.SourceURL, cfg.Credentials, client), noop, nil
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = u.Host + u.Path
		}
		return NewFileSource(path), noop, nil
	case "postgres", "postgresql":
		dbCfg.DSN = cfg.SourceURL
		database, err := db.New(ctx, dbCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to catalog database: %w", err)
		}
		return NewPostgresSource(database), database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported catalog source scheme %q", u.Scheme)
	}
}
