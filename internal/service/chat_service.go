package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/repository"
	"zipcheck-go/pkg/log"
)

// 리포트 스트리밍 분할 크기 (rune 단위)
const reportChunkSize = 120

// ChatService 인터페이스는 웹소켓 기반 리포트 스트리밍 작업을 정의한다.
// 전송은 send 콜백에 위임해 연결 쓰기 직렬화를 호출자가 책임진다.
type ChatService interface {
	StreamReport(ctx context.Context, caseID string, user *model.User, send func([]byte) error, shouldStop func() bool) error
}

type chatService struct {
	caseRepo repository.CaseRepository
	chatRepo repository.ChatRepository
}

// NewChatService 는 새 ChatService 인스턴스를 생성한다.
func NewChatService(caseRepo repository.CaseRepository, chatRepo repository.ChatRepository) ChatService {
	return &chatService{
		caseRepo: caseRepo,
		chatRepo: chatRepo,
	}
}

// StreamReport 는 완료된 케이스의 리포트 마크다운을 조각으로 나눠 send 로 전송한다.
// shouldStop 이 true 를 반환하면 전송을 중단한다.
func (s *chatService) StreamReport(ctx context.Context, caseID string, user *model.User, send func([]byte) error, shouldStop func() bool) error {
	log.Infof("리포트 스트리밍 시작: caseID=%s userID=%d", caseID, user.ID)

	analysisCase, err := s.caseRepo.FindByID(caseID)
	if err != nil {
		return ErrCaseNotFound
	}
	if analysisCase.State != model.StateReport || analysisCase.ReportMarkdown == "" {
		return ErrReportNotReady
	}

	sent := &strings.Builder{}
	runes := []rune(analysisCase.ReportMarkdown)
	for start := 0; start < len(runes); start += reportChunkSize {
		if shouldStop != nil && shouldStop() {
			log.Infof("리포트 스트리밍 중단: caseID=%s", caseID)
			break
		}
		end := start + reportChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		sent.WriteString(chunk)

		payload, _ := json.Marshal(map[string]string{"chunk": chunk})
		if err := send(payload); err != nil {
			return err
		}
	}

	sendCompletion(send)

	// 전송한 내용까지를 대화 기록에 남긴다. 원 요청이 끊겨도 저장은 진행한다.
	if sent.Len() > 0 {
		msg := model.ChatMessage{
			Role:          "assistant",
			Content:       sent.String(),
			ComponentType: "report_view",
			Timestamp:     time.Now(),
		}
		if err := s.chatRepo.AppendMessages(context.Background(), caseID, msg); err != nil {
			log.Errorf("대화 기록 저장 실패: caseID=%s err=%v", caseID, err)
		}
	}
	return nil
}

// sendCompletion 전송 완료 알림 JSON
func sendCompletion(send func([]byte) error) {
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"message":   "전송이 완료되었습니다",
		"timestamp": time.Now().UnixMilli(),
		"date":      time.Now().Format("2006-01-02T15:04:05"),
	}
	b, _ := json.Marshal(notif)
	_ = send(b)
}
