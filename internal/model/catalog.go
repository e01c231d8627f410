package model

import (
	"errors"
	"sort"
	"strings"
)

// ErrBlankTitle marks a catalog row that cannot become an item.
var ErrBlankTitle = errors.New("catalog row has blank title")

// RawRow is one row of the tabular catalog source before normalization.
type RawRow struct {
	Title   string
	Type    string
	Summary string
	Tags    string // comma separated
	Image   string
	URL     string
}

// TagSet is a set of normalized tags.
type TagSet map[string]struct{}

func (t TagSet) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

func (t TagSet) Len() int {
	return len(t)
}

// Sorted returns the tags in lexical order, for display and stable output.
func (t TagSet) Sorted() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// CatalogItem is a normalized catalog entry. Items are immutable once loaded.
type CatalogItem struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Summary string `json:"summary"`
	Tags    TagSet `json:"-"`
	Image   string `json:"image,omitempty"`
	URL     string `json:"url,omitempty"`
}

// IsBook reports whether the item counts toward the session book tally.
func (i CatalogItem) IsBook() bool {
	return strings.EqualFold(strings.TrimSpace(i.Type), "book")
}

// NormalizeTag lowercases and trims a tag or topic for comparison.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseTags splits a raw comma-separated tag field into a normalized set.
// Empty tokens are discarded.
func ParseTags(raw string) TagSet {
	tags := make(TagSet)
	for _, token := range strings.Split(raw, ",") {
		tag := NormalizeTag(token)
		if tag == "" {
			continue
		}
		tags[tag] = struct{}{}
	}
	return tags
}

// NewCatalogItem validates and normalizes a raw row.
func NewCatalogItem(row RawRow) (CatalogItem, error) {
	title := strings.TrimSpace(row.Title)
	if title == "" {
		return CatalogItem{}, ErrBlankTitle
	}

	return CatalogItem{
		Title:   title,
		Type:    strings.TrimSpace(row.Type),
		Summary: strings.TrimSpace(row.Summary),
		Tags:    ParseTags(row.Tags),
		Image:   strings.TrimSpace(row.Image),
		URL:     strings.TrimSpace(row.URL),
	}, nil
}
