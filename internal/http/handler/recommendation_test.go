package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/catalog"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/dto"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/handler"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/middleware"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/web"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/service"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/session"
)

func okBundle(params service.RecommendParams) *model.Bundle {
	recs := []model.Recommendation{{
		Item: model.CatalogItem{
			Title:   "Field Guide to Birds",
			Type:    "Book",
			Summary: "Birds of the east.",
			URL:     "https://www.amazon.com/dp/B0ABCDEFGH/ref=foo?tag=bar",
		},
		Score: 2,
	}}
	if params.Counter != nil {
		params.Counter.Record(recs)
	}
	counts := map[string]int{}
	if params.Counter != nil {
		counts = params.Counter.Snapshot()
	}
	return &model.Bundle{
		SubmissionID:    101,
		Facts:           params.Facts.Normalized(),
		Topics:          []string{"birds", "nature"},
		Recommendations: recs,
		BookCounts:      counts,
		Status:          model.BundleStatusOK,
	}
}

func validationFailure(context.Context, service.RecommendParams) (*model.Bundle, error) {
	verr := &model.ValidationError{Fields: []model.FieldError{{Field: "name", Message: "Please tell us your name."}}}
	return nil, fmt.Errorf("%w: %w", service.ErrInvalidInput, verr)
}

var _ = Describe("RecommendationHandler", func() {
	var (
		router   *gin.Engine
		svc      *mockRecommendationService
		renderer *mockRenderer
		registry *session.Registry
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		router.SetHTMLTemplate(web.MustTemplates())

		svc = &mockRecommendationService{}
		renderer = &mockRenderer{}
		registry = session.NewRegistry(session.RegistryOptions{})
		h := handler.NewRecommendationHandler(svc, renderer)

		router.Use(middleware.Session(registry, false, 3600))
		router.GET("/", h.Index)
		router.POST("/recommend", h.Submit)
		router.GET("/report.pdf", h.Report)
		router.POST("/api/v1/recommendations", h.Create)
		router.GET("/api/v1/session/books", h.Books)
	})

	sessionCookie := func(w *httptest.ResponseRecorder) *http.Cookie {
		for _, c := range w.Result().Cookies() {
			if c.Name == middleware.SessionCookieName {
				return c
			}
		}
		return nil
	}

	postForm := func(values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	postJSON := func(body any, cookie *http.Cookie) *httptest.ResponseRecorder {
		data, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewBuffer(data))
		req.Header.Set("Content-Type", "application/json")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	get := func(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("Index", func() {
		It("renders the form and issues a session cookie", func() {
			w := get("/", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`name="hobbies"`))
			Expect(w.Body.String()).To(ContainSubstring(`value="reroll"`))
			cookie := sessionCookie(w)
			Expect(cookie).NotTo(BeNil())
			Expect(cookie.HttpOnly).To(BeTrue())
		})

		It("keeps an existing session cookie", func() {
			first := get("/", nil)
			cookie := sessionCookie(first)

			second := get("/", cookie)
			Expect(sessionCookie(second)).To(BeNil())
		})
	})

	Describe("Submit", func() {
		It("renders recommendations with the synthesized image", func() {
			svc.recommendFn = func(_ context.Context, p service.RecommendParams) (*model.Bundle, error) {
				return okBundle(p), nil
			}

			w := postForm(url.Values{"name": {"Ada"}, "hobbies": {"birds"}, "action": {"generate"}}, nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			body := w.Body.String()
			Expect(body).To(ContainSubstring("Field Guide to Birds"))
			Expect(body).To(ContainSubstring("https://images-na.ssl-images-amazon.com/images/P/B0ABCDEFGH.01._SL250_.jpg"))
			Expect(body).To(ContainSubstring("Books recommended this session"))
			Expect(svc.lastParams.Facts.Name).To(Equal("Ada"))
			Expect(svc.lastParams.Action).To(Equal("generate"))
			Expect(svc.lastParams.Counter).NotTo(BeNil())
		})

		It("passes the reroll action through", func() {
			svc.recommendFn = func(_ context.Context, p service.RecommendParams) (*model.Bundle, error) {
				return okBundle(p), nil
			}

			w := postForm(url.Values{"name": {"Ada"}, "hobbies": {"birds"}, "action": {"reroll"}}, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(svc.lastParams.Action).To(Equal("reroll"))
		})

		It("shows the no-matches message", func() {
			svc.recommendFn = func(_ context.Context, p service.RecommendParams) (*model.Bundle, error) {
				return &model.Bundle{Facts: p.Facts, Topics: []string{"history"}, Status: model.BundleStatusNoMatches}, nil
			}

			w := postForm(url.Values{"name": {"Ada"}, "hobbies": {"history"}}, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("No strong matches"))
		})

		It("shows inline validation messages", func() {
			svc.recommendFn = validationFailure

			w := postForm(url.Values{"hobbies": {"birds"}}, nil)
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(w.Body.String()).To(ContainSubstring("Please tell us your name."))
			Expect(w.Body.String()).To(ContainSubstring("birds"))
		})

		It("shows a banner when the catalog is unavailable", func() {
			svc.recommendFn = func(context.Context, service.RecommendParams) (*model.Bundle, error) {
				return nil, fmt.Errorf("loading catalog: %w", catalog.ErrCatalogUnavailable)
			}

			w := postForm(url.Values{"name": {"Ada"}, "hobbies": {"birds"}}, nil)
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(w.Body.String()).To(ContainSubstring("catalog is unavailable"))
		})
	})

	Describe("Create", func() {
		It("returns the bundle as JSON", func() {
			svc.recommendFn = func(_ context.Context, p service.RecommendParams) (*model.Bundle, error) {
				return okBundle(p), nil
			}

			w := postJSON(map[string]string{"name": "Ada", "hobbies": "birds"}, nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp dto.RecommendationResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.SubmissionID).To(Equal("101"))
			Expect(resp.Status).To(Equal("ok"))
			Expect(resp.Topics).To(Equal([]string{"birds", "nature"}))
			Expect(resp.Recommendations).To(HaveLen(1))
			Expect(resp.Recommendations[0].Image).To(HaveSuffix("B0ABCDEFGH.01._SL250_.jpg"))
			Expect(resp.BookCounts).To(Equal([]dto.BookCount{{Title: "Field Guide to Birds", Count: 1}}))
			Expect(resp.Message).To(BeEmpty())
		})

		It("returns 400 on a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewBufferString(`{`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.callCount).To(Equal(0))
		})

		It("returns 422 with field messages", func() {
			svc.recommendFn = validationFailure

			w := postJSON(map[string]string{"hobbies": "birds"}, nil)
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			var resp dto.ValidationErrorResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Fields).To(ConsistOf(model.FieldError{Field: "name", Message: "Please tell us your name."}))
		})

		It("returns 503 when the catalog is unavailable", func() {
			svc.recommendFn = func(context.Context, service.RecommendParams) (*model.Bundle, error) {
				return nil, catalog.ErrCatalogUnavailable
			}

			w := postJSON(map[string]string{"name": "Ada", "hobbies": "birds"}, nil)
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		})

		It("returns 500 on unexpected errors", func() {
			svc.recommendFn = func(context.Context, service.RecommendParams) (*model.Bundle, error) {
				return nil, errors.New("boom")
			}

			w := postJSON(map[string]string{"name": "Ada", "hobbies": "birds"}, nil)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("session state", func() {
		It("accumulates book counts per session", func() {
			svc.recommendFn = func(_ context.Context, p service.RecommendParams) (*model.Bundle, error) {
				return okBundle(p), nil
			}

			first := postJSON(map[string]string{"name": "Ada", "hobbies": "birds"}, nil)
			cookie := sessionCookie(first)
			Expect(cookie).NotTo(BeNil())
			postJSON(map[string]string{"name": "Ada", "hobbies": "birds"}, cookie)

			w := get("/api/v1/session/books", cookie)
			Expect(w.Code).To(Equal(http.StatusOK))
			var resp dto.BooksResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Books).To(Equal([]dto.BookCount{{Title: "Field Guide to Birds", Count: 2}}))

			other := get("/api/v1/session/books", nil)
			Expect(json.Unmarshal(other.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Books).To(BeEmpty())
		})
	})

	Describe("Report", func() {
		It("returns 404 before any submission", func() {
			w := get("/report.pdf", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(renderer.callCount).To(Equal(0))
		})

		It("renders the last bundle of the session", func() {
			svc.recommendFn = func(_ context.Context, p service.RecommendParams) (*model.Bundle, error) {
				return okBundle(p), nil
			}
			var rendered *model.Bundle
			renderer.renderFn = func(w io.Writer, b *model.Bundle) error {
				rendered = b
				_, err := w.Write([]byte("%PDF-1.3 test"))
				return err
			}

			cookie := sessionCookie(postJSON(map[string]string{"name": "Ada", "hobbies": "birds"}, nil))
			w := get("/report.pdf", cookie)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/pdf"))
			Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="mindful-recommendations-ada.pdf"`))
			Expect(w.Body.String()).To(HavePrefix("%PDF-"))
			Expect(rendered.SubmissionID).To(Equal(int64(101)))
		})

		It("returns 500 without failing the session when rendering fails", func() {
			svc.recommendFn = func(_ context.Context, p service.RecommendParams) (*model.Bundle, error) {
				return okBundle(p), nil
			}
			renderer.renderFn = func(io.Writer, *model.Bundle) error {
				return errors.New("font missing")
			}

			cookie := sessionCookie(postJSON(map[string]string{"name": "Ada", "hobbies": "birds"}, nil))
			w := get("/report.pdf", cookie)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))

			again := get("/api/v1/session/books", cookie)
			Expect(again.Code).To(Equal(http.StatusOK))
		})
	})
})

var _ = Describe("TopicsHandler", func() {
	It("lists the vocabulary by category", func() {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.GET("/topics", handler.NewTopicsHandler(mustVocabulary()).List)

		req := httptest.NewRequest(http.MethodGet, "/topics", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp dto.TopicsResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Count).To(Equal(3))
		Expect(resp.Categories).To(HaveLen(2))
		Expect(resp.Categories[0].Topics).To(Equal([]string{"gardening", "birds"}))
	})
})
