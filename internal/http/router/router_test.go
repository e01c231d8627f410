package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/audit"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/catalog"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/dto"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/router"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/report"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/service"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/session"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/vocabulary"
)

const sheet = `Title,Type,Summary,Tags,Image,URL
A Year in the Garden,Book,Seasons of planting.,"gardening, birds",,
Kitchen Memories,Book,Recipes from the fifties.,cooking,,
Backyard Birds,Article,Feeders and songs.,gardening,,
`

type fixedDeriver struct {
	topics []string
}

func (d fixedDeriver) Derive(context.Context, model.UserFacts) ([]string, error) {
	return d.topics, nil
}

var _ = Describe("SetupRoutes", func() {
	var engine *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)

		path := filepath.Join(GinkgoT().TempDir(), "catalog.csv")
		Expect(os.WriteFile(path, []byte(sheet), 0o600)).To(Succeed())
		store := catalog.NewStore(catalog.NewFileSource(path), time.Minute, time.Second)

		services := service.NewServices(
			store,
			fixedDeriver{topics: []string{"gardening", "birds", "cooking"}},
			audit.NopSink{},
			vocabulary.Default(),
			service.RecommendationOptions{TopK: 3},
		)

		engine = gin.New()
		router.SetupRoutes(engine, services, session.NewRegistry(session.RegistryOptions{}), router.RouterConfig{
			CookieMaxAge:  3600,
			Renderer:      report.NewPDFRenderer(),
			ExposeMetrics: true,
		})
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	It("serves health and metrics", func() {
		Expect(serve(httptest.NewRequest(http.MethodGet, "/health", nil)).Code).To(Equal(http.StatusOK))

		metrics := serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		Expect(metrics.Code).To(Equal(http.StatusOK))
		Expect(metrics.Body.String()).To(ContainSubstring("go_goroutines"))
	})

	It("serves the form page", func() {
		w := serve(httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Mindful Libraries"))
	})

	It("serves the topic vocabulary", func() {
		w := serve(httptest.NewRequest(http.MethodGet, "/api/v1/topics", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp dto.TopicsResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Count).To(BeNumerically(">", 0))
	})

	It("runs a submission end to end and serves the pdf", func() {
		body, _ := json.Marshal(map[string]string{"name": "Ada", "hobbies": "gardening", "action": "generate"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := serve(req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp dto.RecommendationResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Recommendations).To(HaveLen(3))
		Expect(resp.Recommendations[0].Title).To(Equal("A Year in the Garden"))
		Expect(resp.Recommendations[0].Tags).To(Equal([]string{"birds", "gardening"}))
		Expect(resp.Recommendations[1].Title).To(Equal("Kitchen Memories"))
		Expect(resp.Recommendations[2].Title).To(Equal("Backyard Birds"))

		cookies := w.Result().Cookies()
		Expect(cookies).NotTo(BeEmpty())

		pdfReq := httptest.NewRequest(http.MethodGet, "/report.pdf", nil)
		pdfReq.AddCookie(cookies[0])
		pdf := serve(pdfReq)
		Expect(pdf.Code).To(Equal(http.StatusOK))
		Expect(pdf.Body.String()).To(HavePrefix("%PDF-"))
	})
})
