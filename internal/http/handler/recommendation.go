package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resensebox/Mindful-Libraries-sub000/common"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/catalog"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/dto"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/middleware"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/metrics"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/service"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/session"
)

const (
	indexTemplate = "index.html"

	catalogUnavailableMessage = "The library catalog is unavailable right now. Please try again in a few minutes."
	unexpectedErrorMessage    = "Something went wrong while preparing recommendations. Please try again."
	reportFilenamePrefix      = "mindful-recommendations"
)

// Renderer produces the downloadable report.
type Renderer interface {
	Render(w io.Writer, b *model.Bundle) error
}

type RecommendationHandler struct {
	recommendations service.RecommendationService
	renderer        Renderer
}

func NewRecommendationHandler(recommendations service.RecommendationService, renderer Renderer) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		renderer:        renderer,
	}
}

type pageData struct {
	Form       dto.RecommendationRequest
	Errors     map[string]string
	Banner     string
	Result     *dto.RecommendationResponse
	BookCounts []dto.BookCount
}

func (h *RecommendationHandler) Index(c *gin.Context) {
	data := pageData{Errors: map[string]string{}}
	if s := middleware.CurrentSession(c); s != nil {
		data.BookCounts = dto.ToBookCounts(s.Snapshot())
		if last := s.LastBundle(); last != nil {
			resp := dto.ToRecommendationResponse(last)
			data.Result = &resp
			data.Form = dto.RecommendationRequest{
				Name:    last.Facts.Name,
				Jobs:    last.Facts.Jobs,
				Hobbies: last.Facts.Hobbies,
				Decade:  last.Facts.Decade,
			}
		}
	}
	c.HTML(http.StatusOK, indexTemplate, data)
}

// Submit handles the Generate and Reroll form buttons.
func (h *RecommendationHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecommendationRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.WarnContext(ctx, "invalid form body", "error", err)
		c.HTML(http.StatusBadRequest, indexTemplate, pageData{
			Errors: map[string]string{},
			Banner: "We could not read that form. Please try again.",
		})
		return
	}

	data := pageData{Form: req, Errors: map[string]string{}}
	s := middleware.CurrentSession(c)

	bundle, err := h.recommend(ctx, req, s)
	if err != nil {
		status := h.describeError(ctx, err, &data)
		if s != nil {
			data.BookCounts = dto.ToBookCounts(s.Snapshot())
		}
		c.HTML(status, indexTemplate, data)
		return
	}

	resp := dto.ToRecommendationResponse(bundle)
	data.Result = &resp
	data.BookCounts = resp.BookCounts
	c.HTML(http.StatusOK, indexTemplate, data)
}

// Create is the JSON equivalent of Submit.
func (h *RecommendationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bundle, err := h.recommend(ctx, req, middleware.CurrentSession(c))
	if err != nil {
		var verr *model.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusUnprocessableEntity, dto.ValidationErrorResponse{
				Error:  "invalid input",
				Fields: verr.Fields,
			})
		case errors.Is(err, catalog.ErrCatalogUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": catalogUnavailableMessage})
		default:
			slog.ErrorContext(ctx, "recommendation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": unexpectedErrorMessage})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToRecommendationResponse(bundle))
}

// Books returns the session's book tally.
func (h *RecommendationHandler) Books(c *gin.Context) {
	books := []dto.BookCount{}
	if s := middleware.CurrentSession(c); s != nil {
		books = dto.ToBookCounts(s.Snapshot())
	}
	c.JSON(http.StatusOK, dto.BooksResponse{Books: books})
}

// Report renders the session's most recent bundle as a PDF.
func (h *RecommendationHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()

	s := middleware.CurrentSession(c)
	var bundle *model.Bundle
	if s != nil {
		bundle = s.LastBundle()
	}
	if bundle == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recommendations yet, submit the form first"})
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, bundle); err != nil {
		metrics.SideEffectFailuresTotal.WithLabelValues("pdf").Inc()
		slog.WarnContext(ctx, "failed to render pdf report", "error", err, "submission_id", bundle.SubmissionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build the PDF, please try again"})
		return
	}

	filename := reportFilenamePrefix + ".pdf"
	if slug, err := common.Slugify(bundle.Facts.Name, ""); err == nil {
		filename = reportFilenamePrefix + "-" + slug + ".pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *RecommendationHandler) recommend(ctx context.Context, req dto.RecommendationRequest, s *session.Session) (*model.Bundle, error) {
	params := service.RecommendParams{
		Facts:  req.Facts(),
		Action: req.Action,
	}
	if s != nil {
		params.Counter = s
	}

	bundle, err := h.recommendations.Recommend(ctx, params)
	if err != nil {
		return nil, err
	}
	if s != nil {
		s.SetLastBundle(bundle)
	}
	return bundle, nil
}

// describeError fills the page's messages and returns the HTTP status.
func (h *RecommendationHandler) describeError(ctx context.Context, err error, data *pageData) int {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Fields {
			data.Errors[f.Field] = f.Message
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		data.Banner = catalogUnavailableMessage
		return http.StatusServiceUnavailable
	default:
		slog.ErrorContext(ctx, "recommendation failed", "error", err)
		data.Banner = unexpectedErrorMessage
		return http.StatusInternalServerError
	}
}
