package handler

import (
	"net/http"
	"strings"

	"zipcheck-go/internal/config"
	"zipcheck-go/internal/content"

	"github.com/gin-gonic/gin"
)

// ContentHandler 는 정적 법률 문서와 robots.txt 를 처리한다.
type ContentHandler struct {
	robotsCfg config.RobotsConfig
}

// NewContentHandler 는 새 ContentHandler 인스턴스를 생성한다.
func NewContentHandler(robotsCfg config.RobotsConfig) *ContentHandler {
	return &ContentHandler{robotsCfg: robotsCfg}
}

// GetDocument 는 내장 문서(company/terms/privacy)를 돌려준다.
func (h *ContentHandler) GetDocument(c *gin.Context) {
	slug := c.Param("slug")
	switch slug {
	case "company", "terms", "privacy":
	default:
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "문서를 찾을 수 없습니다", "data": nil})
		return
	}

	doc, err := content.Get(slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "문서를 불러올 수 없습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": doc})
}

// Robots 는 설정된 차단 경로 목록으로 robots.txt 를 생성한다.
func (h *ContentHandler) Robots(c *gin.Context) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if len(h.robotsCfg.DisallowPrefixes) == 0 {
		b.WriteString("Allow: /\n")
	} else {
		for _, prefix := range h.robotsCfg.DisallowPrefixes {
			b.WriteString("Disallow: " + prefix + "\n")
		}
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}
