package dto

import "github.com/resensebox/Mindful-Libraries-sub000/internal/vocabulary"

type TopicsResponse struct {
	Count      int                   `json:"count"`
	Categories []vocabulary.Category `json:"categories"`
}

func ToTopicsResponse(v *vocabulary.Vocabulary) TopicsResponse {
	return TopicsResponse{
		Count:      v.Len(),
		Categories: v.Categories(),
	}
}
