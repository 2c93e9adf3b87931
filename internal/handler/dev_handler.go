package handler

import (
	"net/http"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/pipeline"
	"zipcheck-go/internal/repository"
	"zipcheck-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DevHandler 는 개발 모드 전용 수동 QA 라우트를 처리한다.
// release 모드에서는 라우트 자체가 등록되지 않는다.
type DevHandler struct {
	caseRepo  repository.CaseRepository
	processor *pipeline.Processor
}

// NewDevHandler 는 새 DevHandler 인스턴스를 생성한다.
func NewDevHandler(caseRepo repository.CaseRepository, processor *pipeline.Processor) *DevHandler {
	return &DevHandler{
		caseRepo:  caseRepo,
		processor: processor,
	}
}

// ImportCase 는 상태를 포함한 케이스 JSON 을 그대로 심는다.
func (h *DevHandler) ImportCase(c *gin.Context) {
	var imported model.AnalysisCase
	if err := c.ShouldBindJSON(&imported); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 케이스 JSON 입니다", "data": nil})
		return
	}

	if imported.ID == "" {
		imported.ID = uuid.NewString()
	}
	if imported.State == "" {
		imported.State = model.StateInit
	}

	if err := h.caseRepo.Create(&imported); err != nil {
		log.Errorf("케이스 임포트 실패: error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "케이스 저장에 실패했습니다", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": imported})
}

// RunStep 은 단일 파이프라인 단계를 동기로 실행하고 결과를 돌려준다.
func (h *DevHandler) RunStep(c *gin.Context) {
	var req struct {
		Step string `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "step 필드가 필요합니다", "data": nil})
		return
	}

	result, err := h.processor.RunStep(c.Request.Context(), c.Param("caseId"), req.Step)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error(), "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": result})
}
