package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

var ErrMissingColumn = errors.New("catalog is missing a required column")

var requiredColumns = []string{"title", "type", "summary", "tags"}

// ParseCSV reads a catalog sheet export. Headers match case-insensitively,
// extra columns are ignored, Image and URL are optional.
func ParseCSV(r io.Reader) ([]model.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty sheet", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var rows []model.RawRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		rows = append(rows, model.RawRow{
			Title:   get("title"),
			Type:    get("type"),
			Summary: get("summary"),
			Tags:    get("tags"),
			Image:   get("image"),
			URL:     get("url"),
		})
	}

	return rows, nil
}
