package handler

import (
	"errors"
	"net/http"
	"strconv"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// CaseHandler 는 분석 케이스 마법사의 단계별 요청을 처리한다.
type CaseHandler struct {
	caseService service.CaseService
}

// NewCaseHandler 는 새 CaseHandler 인스턴스를 생성한다.
func NewCaseHandler(caseService service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// Create 는 새 케이스를 만든다. 로그인 여부는 선택이다.
func (h *CaseHandler) Create(c *gin.Context) {
	var userID *uint
	if claimsValue, exists := c.Get("claims"); exists {
		if claims, ok := claimsValue.(*token.CustomClaims); ok {
			userID = &claims.UserID
		}
	}

	created, err := h.caseService.CreateCase(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("케이스 생성 실패: error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "케이스 생성에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": created})
}

// Get 은 케이스 현재 스냅샷을 돌려준다.
func (h *CaseHandler) Get(c *gin.Context) {
	found, err := h.caseService.GetCase(c.Param("caseId"))
	if err != nil {
		respondCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": found})
}

// SetAddress 는 주소 선택 단계를 처리한다.
func (h *CaseHandler) SetAddress(c *gin.Context) {
	var req service.AddressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 요청 본문입니다", "data": nil})
		return
	}

	updated, err := h.caseService.SetAddress(c.Request.Context(), c.Param("caseId"), req)
	if err != nil {
		respondCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": updated})
}

// SetContractType 은 계약 유형 단계를 처리한다.
func (h *CaseHandler) SetContractType(c *gin.Context) {
	var req struct {
		ContractType string `json:"contractType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 요청 본문입니다", "data": nil})
		return
	}

	updated, err := h.caseService.SetContractType(c.Request.Context(), c.Param("caseId"), req.ContractType)
	if err != nil {
		respondCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": updated})
}

// SetPrice 는 가격 입력 단계를 처리한다.
func (h *CaseHandler) SetPrice(c *gin.Context) {
	var req service.PriceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 요청 본문입니다", "data": nil})
		return
	}

	updated, err := h.caseService.SetPrice(c.Request.Context(), c.Param("caseId"), req)
	if err != nil {
		respondCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": updated})
}

// ChooseRegistry 는 등기부 선택 단계를 처리하고 분석을 시작시킨다.
func (h *CaseHandler) ChooseRegistry(c *gin.Context) {
	var req struct {
		Method string `json:"method" binding:"required"`
		FileID string `json:"fileId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 요청 본문입니다", "data": nil})
		return
	}

	var fileID uint
	if req.FileID != "" {
		parsed, err := strconv.ParseUint(req.FileID, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "fileId 형식이 잘못되었습니다", "data": nil})
			return
		}
		fileID = uint(parsed)
	}

	updated, err := h.caseService.ChooseRegistry(c.Request.Context(), c.Param("caseId"), req.Method, fileID)
	if err != nil {
		respondCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": updated})
}

// GetReport 는 완료된 케이스의 마크다운 리포트를 돌려준다.
func (h *CaseHandler) GetReport(c *gin.Context) {
	markdown, err := h.caseService.GetReport(c.Param("caseId"))
	if err != nil {
		respondCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"markdown": markdown}})
}

// GetMessages 는 케이스 세션의 대화 이력을 돌려준다.
func (h *CaseHandler) GetMessages(c *gin.Context) {
	messages, err := h.caseService.GetMessages(c.Request.Context(), c.Param("caseId"))
	if err != nil {
		respondCaseError(c, err)
		return
	}
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": messages})
}

// respondCaseError 는 케이스 서비스의 sentinel 에러를 HTTP 상태로 바꾼다.
func respondCaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error(), "data": nil})
	case errors.Is(err, service.ErrWrongState), errors.Is(err, service.ErrReportNotReady):
		c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": err.Error(), "data": nil})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error(), "data": nil})
	default:
		log.Errorf("케이스 처리 실패: error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "요청 처리에 실패했습니다", "data": nil})
	}
}
