package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/repository"
	"zipcheck-go/internal/service"
)

// streamCaseService 는 조회만 응답하는 CaseService 대역이다.
type streamCaseService struct {
	cases map[string]*model.AnalysisCase
}

func (s *streamCaseService) CreateCase(ctx context.Context, userID *uint) (*model.AnalysisCase, error) {
	return nil, nil
}
func (s *streamCaseService) GetCase(id string) (*model.AnalysisCase, error) {
	c, ok := s.cases[id]
	if !ok {
		return nil, service.ErrCaseNotFound
	}
	return c, nil
}
func (s *streamCaseService) SetAddress(ctx context.Context, id string, input service.AddressInput) (*model.AnalysisCase, error) {
	return nil, nil
}
func (s *streamCaseService) SetContractType(ctx context.Context, id, contractType string) (*model.AnalysisCase, error) {
	return nil, nil
}
func (s *streamCaseService) SetPrice(ctx context.Context, id string, input service.PriceInput) (*model.AnalysisCase, error) {
	return nil, nil
}
func (s *streamCaseService) ChooseRegistry(ctx context.Context, id, method string, fileID uint) (*model.AnalysisCase, error) {
	return nil, nil
}
func (s *streamCaseService) GetReport(id string) (string, error) { return "", nil }
func (s *streamCaseService) FailCase(ctx context.Context, id, message string) error {
	return nil
}
func (s *streamCaseService) CompleteCase(ctx context.Context, id, reportMarkdown string) error {
	return nil
}
func (s *streamCaseService) GetMessages(ctx context.Context, id string) ([]model.ChatMessage, error) {
	return nil, nil
}

func newStreamTestRouter(t *testing.T, c *model.AnalysisCase) (*gin.Engine, *redis.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := NewAnalysisHandler(
		&streamCaseService{cases: map[string]*model.AnalysisCase{c.ID: c}},
		repository.NewChatRepository(client),
	)
	router := gin.New()
	router.GET("/api/v1/analysis/:caseId/stream", h.Stream)
	return router, client
}

func TestStreamReplaysFinishedReport(t *testing.T) {
	router, _ := newStreamTestRouter(t, &model.AnalysisCase{ID: "case-1", State: model.StateReport})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/case-1/stream", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "event:progress")
	assert.Contains(t, w.Body.String(), `"step":"report_render"`)
	assert.Contains(t, w.Body.String(), `"status":"report"`)
}

func TestStreamReplaysFailedCase(t *testing.T) {
	router, _ := newStreamTestRouter(t, &model.AnalysisCase{
		ID: "case-1", State: model.StateError, ErrorMessage: "등기부 파싱 실패",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/case-1/stream", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"error"`)
	assert.Contains(t, w.Body.String(), "등기부 파싱 실패")
}

func TestStreamRejectsCaseNotInProgress(t *testing.T) {
	router, _ := newStreamTestRouter(t, &model.AnalysisCase{ID: "case-1", State: model.StateRegistryChoice})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/case-1/stream", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "분석이 진행 중인 케이스가 아닙니다")
}

func TestStreamCaseNotFound(t *testing.T) {
	router, _ := newStreamTestRouter(t, &model.AnalysisCase{ID: "case-1", State: model.StateParseEnrich})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/no-such/stream", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamRelaysProgressUntilTerminal(t *testing.T) {
	router, client := newStreamTestRouter(t, &model.AnalysisCase{ID: "case-1", State: model.StateParseEnrich})

	publish := func(event model.ProgressEvent) int64 {
		payload, err := json.Marshal(event)
		require.NoError(t, err)
		n, err := client.Publish(context.Background(), "case:progress:case-1", payload).Result()
		require.NoError(t, err)
		return n
	}

	// 핸들러 구독이 확립될 때까지 started 이벤트를 재발행하고, 닿으면 종료 이벤트를 보낸다
	go func() {
		for {
			n := publish(model.ProgressEvent{CaseID: "case-1", Step: "registry_parse", Status: "started"})
			if n > 0 {
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
		publish(model.ProgressEvent{CaseID: "case-1", Step: "report_render", Status: "report", Message: "리포트가 준비되었습니다"})
	}()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/case-1/stream", nil)
	router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, `"step":"registry_parse"`)
	assert.Contains(t, body, `"status":"report"`)
	assert.Contains(t, body, "리포트가 준비되었습니다")
}
