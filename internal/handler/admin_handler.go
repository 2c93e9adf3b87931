package handler

import (
	"net/http"
	"strconv"

	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler 는 관리자 대시보드 API 요청을 처리한다.
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 는 새 AdminHandler 인스턴스를 생성한다.
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GetKPIs 는 대시보드 핵심 지표를 돌려준다.
func (h *AdminHandler) GetKPIs(c *gin.Context) {
	kpis, err := h.adminService.GetKPIs()
	if err != nil {
		log.Error("KPI 조회 실패", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "지표 조회에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": kpis})
}

// GetFunnel 은 단계별 케이스 수를 돌려준다.
func (h *AdminHandler) GetFunnel(c *gin.Context) {
	funnel, err := h.adminService.GetFunnel()
	if err != nil {
		log.Error("퍼널 조회 실패", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "퍼널 조회에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": funnel})
}

// GetChannels 는 채널별 가입자 수를 돌려준다.
func (h *AdminHandler) GetChannels(c *gin.Context) {
	channels, err := h.adminService.GetChannels()
	if err != nil {
		log.Error("채널 집계 조회 실패", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "채널 집계 조회에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": channels})
}

// ListUsers 는 사용자 목록을 돌려준다.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)

	users, total, err := h.adminService.ListUsers(page, size)
	if err != nil {
		log.Error("사용자 목록 조회 실패", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "사용자 목록 조회에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"items": users, "totalCount": total, "page": page, "size": size,
	}})
}

// UpdateUserRole 은 사용자 권한을 변경한다.
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "userId 형식이 잘못되었습니다", "data": nil})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 요청 본문입니다", "data": nil})
		return
	}

	if err := h.adminService.UpdateUserRole(uint(userID), req.Role); err != nil {
		if err == service.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "사용자를 찾을 수 없습니다", "data": nil})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error(), "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}

// ListCases 는 케이스 테이블을 돌려준다. state 쿼리로 필터할 수 있다.
func (h *AdminHandler) ListCases(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)
	state := c.Query("state")

	cases, total, err := h.adminService.ListCases(page, size, state)
	if err != nil {
		log.Error("케이스 목록 조회 실패", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "케이스 목록 조회에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"items": cases, "totalCount": total, "page": page, "size": size,
	}})
}

// ListPayments 는 결제 테이블을 돌려준다.
func (h *AdminHandler) ListPayments(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 20)

	payments, total, err := h.adminService.ListPayments(page, size)
	if err != nil {
		log.Error("결제 목록 조회 실패", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "결제 목록 조회에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"items": payments, "totalCount": total, "page": page, "size": size,
	}})
}

// TriggerCrawl 은 수동 크롤링 작업을 발행한다.
func (h *AdminHandler) TriggerCrawl(c *gin.Context) {
	var req struct {
		Source string `json:"source" binding:"required"`
		Region string `json:"region"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 요청 본문입니다", "data": nil})
		return
	}

	if err := h.adminService.TriggerCrawl(req.Source, req.Region); err != nil {
		log.Error("크롤링 트리거 실패", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "크롤링 작업 발행에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}

// SearchListings 는 수집 매물을 검색한다.
func (h *AdminHandler) SearchListings(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "query 는 필수입니다", "data": nil})
		return
	}

	listings, err := h.adminService.SearchListings(c.Request.Context(), query, c.Query("region"), queryInt(c, "size", 20))
	if err != nil {
		log.Error("매물 검색 실패", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "매물 검색에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"items": listings, "totalCount": len(listings),
	}})
}
