package handler

import (
	"net/http"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/repository"
	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler 는 분석 진행 상황 SSE 스트림을 처리한다.
type AnalysisHandler struct {
	caseService service.CaseService
	chatRepo    repository.ChatRepository
}

// NewAnalysisHandler 는 새 AnalysisHandler 인스턴스를 생성한다.
func NewAnalysisHandler(caseService service.CaseService, chatRepo repository.ChatRepository) *AnalysisHandler {
	return &AnalysisHandler{
		caseService: caseService,
		chatRepo:    chatRepo,
	}
}

// Stream 은 Redis 진행 채널의 이벤트를 SSE 로 중계한다.
// 이미 끝난 케이스는 종료 이벤트 하나만 보내고 닫는다.
// report 또는 error 이벤트가 나가면 스트림을 닫는다.
func (h *AnalysisHandler) Stream(c *gin.Context) {
	caseID := c.Param("caseId")

	analysisCase, err := h.caseService.GetCase(caseID)
	if err != nil {
		respondCaseError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// 재접속한 클라이언트를 위한 종료 상태 즉시 재생
	switch analysisCase.State {
	case model.StateReport:
		c.SSEvent("progress", model.ProgressEvent{CaseID: caseID, Step: "report_render", Status: "report", Message: "리포트가 준비되었습니다"})
		c.Writer.Flush()
		return
	case model.StateError:
		c.SSEvent("progress", model.ProgressEvent{CaseID: caseID, Step: "", Status: "error", Message: analysisCase.ErrorMessage})
		c.Writer.Flush()
		return
	}

	if analysisCase.State != model.StateParseEnrich {
		c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": "분석이 진행 중인 케이스가 아닙니다", "data": nil})
		return
	}

	events, cancel, err := h.chatRepo.SubscribeProgress(c.Request.Context(), caseID)
	if err != nil {
		log.Errorf("진행 채널 구독 실패: caseId=%s error: %v", caseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "진행 상황을 구독할 수 없습니다", "data": nil})
		return
	}
	defer cancel()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("progress", event)
			c.Writer.Flush()
			if event.Status == "report" || event.Status == "error" {
				return
			}
		}
	}
}
