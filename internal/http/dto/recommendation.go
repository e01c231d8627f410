package dto

import (
	"sort"
	"strconv"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

// RecommendationRequest binds both the HTML form and the JSON API body.
type RecommendationRequest struct {
	Name    string `json:"name" form:"name"`
	Jobs    string `json:"jobs" form:"jobs"`
	Hobbies string `json:"hobbies" form:"hobbies"`
	Decade  string `json:"decade" form:"decade"`
	Action  string `json:"action" form:"action"`
}

func (r RecommendationRequest) Facts() model.UserFacts {
	return model.UserFacts{
		Name:    r.Name,
		Jobs:    r.Jobs,
		Hobbies: r.Hobbies,
		Decade:  r.Decade,
	}
}

type RecommendationItem struct {
	Title   string   `json:"title"`
	Type    string   `json:"type"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
	Image   string   `json:"image,omitempty"`
	URL     string   `json:"url,omitempty"`
	Score   int      `json:"score"`
}

type BookCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

type RecommendationResponse struct {
	SubmissionID    string               `json:"submission_id"`
	Status          string               `json:"status"`
	Topics          []string             `json:"topics"`
	Recommendations []RecommendationItem `json:"recommendations"`
	BookCounts      []BookCount          `json:"book_counts"`
	Message         string               `json:"message,omitempty"`
}

const NoMatchesMessage = "No strong matches this time. Try a re-roll or add a little more about their hobbies."

func ToRecommendationResponse(b *model.Bundle) RecommendationResponse {
	resp := RecommendationResponse{
		SubmissionID:    strconv.FormatInt(b.SubmissionID, 10),
		Status:          string(b.Status),
		Topics:          b.Topics,
		Recommendations: make([]RecommendationItem, len(b.Recommendations)),
		BookCounts:      ToBookCounts(b.BookCounts),
	}
	if resp.Topics == nil {
		resp.Topics = []string{}
	}

	for i, r := range b.Recommendations {
		resp.Recommendations[i] = RecommendationItem{
			Title:   r.Item.Title,
			Type:    r.Item.Type,
			Summary: r.Item.Summary,
			Tags:    r.Item.Tags.Sorted(),
			Image:   r.Item.DisplayImage(),
			URL:     r.Item.URL,
			Score:   r.Score,
		}
	}

	if !b.HasMatches() {
		resp.Message = NoMatchesMessage
	}
	return resp
}

// ToBookCounts orders by count, then title.
func ToBookCounts(counts map[string]int) []BookCount {
	out := make([]BookCount, 0, len(counts))
	for title, n := range counts {
		out = append(out, BookCount{Title: title, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Title < out[j].Title
	})
	return out
}

type ValidationErrorResponse struct {
	Error  string             `json:"error"`
	Fields []model.FieldError `json:"fields"`
}

type BooksResponse struct {
	Books []BookCount `json:"books"`
}
