// Package handler 는 HTTP 요청을 처리하는 컨트롤러 로직을 담는다.
package handler

import (
	"net/http"

	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AddressHandler 는 주소 검색 프록시 요청을 처리한다.
type AddressHandler struct {
	addressService service.AddressService
}

// NewAddressHandler 는 새 AddressHandler 인스턴스를 생성한다.
func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// 주소 라우트는 정부 API 의 {header, body} 봉투를 그대로 따른다.
func addressEnvelope(resultCode, resultMsg string, body interface{}) gin.H {
	return gin.H{
		"header": gin.H{"resultCode": resultCode, "resultMsg": resultMsg},
		"body":   body,
	}
}

// Search 는 도로명주소 검색을 처리한다.
func (h *AddressHandler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, addressEnvelope("E0001", "keyword 는 필수입니다", nil))
		return
	}
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 10)

	result, err := h.addressService.Search(c.Request.Context(), keyword, page, size)
	if err != nil {
		log.Errorf("주소 검색 실패: keyword=%s error: %v", keyword, err)
		c.JSON(http.StatusBadGateway, addressEnvelope("E9999", "주소 검색에 실패했습니다", nil))
		return
	}

	c.JSON(http.StatusOK, addressEnvelope("0", "정상", result))
}

// LegalDong 은 법정동코드 조회를 처리한다.
func (h *AddressHandler) LegalDong(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, addressEnvelope("E0001", "keyword 는 필수입니다", nil))
		return
	}

	results, err := h.addressService.SearchLegalDong(c.Request.Context(), keyword)
	if err != nil {
		log.Errorf("법정동코드 조회 실패: keyword=%s error: %v", keyword, err)
		c.JSON(http.StatusBadGateway, addressEnvelope("E9999", "법정동코드 조회에 실패했습니다", nil))
		return
	}

	c.JSON(http.StatusOK, addressEnvelope("0", "정상", gin.H{"items": results, "totalCount": len(results)}))
}
