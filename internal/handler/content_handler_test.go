package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipcheck-go/internal/config"
)

func newContentRouter(robotsCfg config.RobotsConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewContentHandler(robotsCfg)
	r.GET("/robots.txt", h.Robots)
	r.GET("/api/v1/content/:slug", h.GetDocument)
	return r
}

func TestGetDocumentKnownSlugs(t *testing.T) {
	r := newContentRouter(config.RobotsConfig{})

	for _, slug := range []string{"company", "terms", "privacy"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/content/"+slug, nil))
		require.Equal(t, http.StatusOK, w.Code, slug)

		var body struct {
			Code int `json:"code"`
			Data struct {
				Slug     string `json:"slug"`
				Title    string `json:"title"`
				Sections []struct {
					Heading string `json:"heading"`
					Body    string `json:"body"`
				} `json:"sections"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, slug, body.Data.Slug)
		assert.NotEmpty(t, body.Data.Title)
		assert.NotEmpty(t, body.Data.Sections)
	}
}

func TestGetDocumentUnknownSlug(t *testing.T) {
	r := newContentRouter(config.RobotsConfig{})

	for _, slug := range []string{"about", "pricing", "..", "company.json"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/content/"+slug, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, slug)
	}
}

func TestRobotsWithDisallowPrefixes(t *testing.T) {
	r := newContentRouter(config.RobotsConfig{
		DisallowPrefixes: []string{"/api/", "/admin", "/chat/"},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "User-agent: *\nDisallow: /api/\nDisallow: /admin\nDisallow: /chat/\n", w.Body.String())
}

func TestRobotsWithoutDisallowPrefixes(t *testing.T) {
	r := newContentRouter(config.RobotsConfig{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User-agent: *\nAllow: /\n", w.Body.String())
}
