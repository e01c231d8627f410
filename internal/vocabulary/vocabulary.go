// Package vocabulary holds the closed set of leisure topics the LLM may pick
// from and catalog tags are matched against.
package vocabulary

import (
	"errors"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

var ErrEmpty = errors.New("vocabulary has no topics")

// Category is a named group of topics, in display order.
type Category struct {
	Name   string   `json:"name"`
	Topics []string `json:"topics"`
}

// Vocabulary is immutable after construction and safe for concurrent use.
type Vocabulary struct {
	categories []Category
	flat       []string
	index      map[string]struct{}
}

// New builds a vocabulary from categories. Topics are normalized; the flat
// list keeps first-occurrence order across categories with duplicates removed.
func New(categories []Category) (*Vocabulary, error) {
	v := &Vocabulary{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]struct{}),
	}

	for _, c := range categories {
		cat := Category{Name: c.Name, Topics: make([]string, 0, len(c.Topics))}
		for _, raw := range c.Topics {
			topic := model.NormalizeTag(raw)
			if topic == "" {
				continue
			}
			if _, seen := v.index[topic]; seen {
				continue
			}
			v.index[topic] = struct{}{}
			v.flat = append(v.flat, topic)
			cat.Topics = append(cat.Topics, topic)
		}
		if len(cat.Topics) > 0 {
			v.categories = append(v.categories, cat)
		}
	}

	if len(v.flat) == 0 {
		return nil, ErrEmpty
	}
	return v, nil
}

// Contains reports membership using case-insensitive, trimmed comparison.
func (v *Vocabulary) Contains(topic string) bool {
	_, ok := v.index[model.NormalizeTag(topic)]
	return ok
}

// Topics returns the flat vocabulary in order.
func (v *Vocabulary) Topics() []string {
	out := make([]string, len(v.flat))
	copy(out, v.flat)
	return out
}

// Categories returns a copy of the grouping.
func (v *Vocabulary) Categories() []Category {
	out := make([]Category, len(v.categories))
	for i, c := range v.categories {
		topics := make([]string, len(c.Topics))
		copy(topics, c.Topics)
		out[i] = Category{Name: c.Name, Topics: topics}
	}
	return out
}

func (v *Vocabulary) Len() int {
	return len(v.flat)
}
