package handler

import (
	"errors"
	"net/http"
	"strconv"

	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// TradeHandler 는 아파트 실거래가 프록시 요청을 처리한다.
type TradeHandler struct {
	tradeService service.TradeService
}

// NewTradeHandler 는 새 TradeHandler 인스턴스를 생성한다.
func NewTradeHandler(tradeService service.TradeService) *TradeHandler {
	return &TradeHandler{tradeService: tradeService}
}

// GetAptTrades 는 국토부 아파트 실거래가 조회를 처리한다.
// 봉투는 {success, data} 형식이다.
func (h *TradeHandler) GetAptTrades(c *gin.Context) {
	lawdCd := c.Query("lawdCd")
	dealYmd := c.Query("dealYmd")

	filter := service.TradeFilter{
		AptName: c.Query("aptName"),
		Dong:    c.Query("dong"),
	}
	if areaStr := c.Query("area"); areaStr != "" {
		area, err := strconv.ParseFloat(areaStr, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "area 형식이 잘못되었습니다"})
			return
		}
		filter.Area = area
	}

	records, totalCount, err := h.tradeService.GetAptTrades(c.Request.Context(), lawdCd, dealYmd, filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidParams) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		log.Errorf("실거래가 조회 실패: lawdCd=%s dealYmd=%s error: %v", lawdCd, dealYmd, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "실거래가 조회에 실패했습니다"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"items": records, "totalCount": totalCount}})
}

// queryInt 쿼리 정수 파싱 (실패 시 기본값)
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
