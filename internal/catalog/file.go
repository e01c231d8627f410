package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

// FileSource reads a local CSV export. Used in development and tests.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return "file"
}

func (s *FileSource) Fetch(ctx context.Context) ([]model.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	return ParseCSV(f)
}
