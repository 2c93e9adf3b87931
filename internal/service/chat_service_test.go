package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipcheck-go/internal/model"
)

func newTestChatService() (ChatService, *fakeCaseRepo, *fakeChatRepo) {
	caseRepo := newFakeCaseRepo()
	chatRepo := newFakeChatRepo()
	return NewChatService(caseRepo, chatRepo), caseRepo, chatRepo
}

func reportCase(markdown string) *model.AnalysisCase {
	return &model.AnalysisCase{
		ID:             "case-1",
		State:          model.StateReport,
		ReportMarkdown: markdown,
	}
}

// collectFrames 는 send 로 나간 프레임을 전부 모은다.
func collectFrames(frames *[][]byte) func([]byte) error {
	return func(b []byte) error {
		cp := make([]byte, len(b))
		copy(cp, b)
		*frames = append(*frames, cp)
		return nil
	}
}

func TestStreamReportChunksAndCompletes(t *testing.T) {
	svc, caseRepo, chatRepo := newTestChatService()
	markdown := strings.Repeat("가", 250) // 120 rune 조각 2개 + 10 rune 조각 1개
	require.NoError(t, caseRepo.Create(reportCase(markdown)))

	var frames [][]byte
	err := svc.StreamReport(context.Background(), "case-1", &model.User{ID: 3}, collectFrames(&frames), nil)
	require.NoError(t, err)

	// 마지막 프레임은 완료 알림이다
	require.Len(t, frames, 4)
	var rebuilt strings.Builder
	for _, frame := range frames[:3] {
		var chunk map[string]string
		require.NoError(t, json.Unmarshal(frame, &chunk))
		rebuilt.WriteString(chunk["chunk"])
	}
	assert.Equal(t, markdown, rebuilt.String())

	var completion map[string]interface{}
	require.NoError(t, json.Unmarshal(frames[3], &completion))
	assert.Equal(t, "completion", completion["type"])
	assert.Equal(t, "finished", completion["status"])

	// 전송한 내용이 대화 기록으로 남는다
	messages := chatRepo.messages["case-1"]
	require.Len(t, messages, 1)
	assert.Equal(t, "assistant", messages[0].Role)
	assert.Equal(t, "report_view", messages[0].ComponentType)
	assert.Equal(t, markdown, messages[0].Content)
}

func TestStreamReportStopsMidStream(t *testing.T) {
	svc, caseRepo, chatRepo := newTestChatService()
	markdown := strings.Repeat("나", 600)
	require.NoError(t, caseRepo.Create(reportCase(markdown)))

	// 두 번째 조각부터 중단 지시
	sentChunks := 0
	shouldStop := func() bool { return sentChunks >= 1 }

	var frames [][]byte
	send := func(b []byte) error {
		var chunk map[string]string
		if json.Unmarshal(b, &chunk) == nil && chunk["chunk"] != "" {
			sentChunks++
		}
		frames = append(frames, b)
		return nil
	}

	err := svc.StreamReport(context.Background(), "case-1", &model.User{ID: 3}, send, shouldStop)
	require.NoError(t, err)

	// 조각 1개 + 완료 알림만 나간다
	require.Len(t, frames, 2)

	// 기록에는 보낸 데까지만 남는다
	messages := chatRepo.messages["case-1"]
	require.Len(t, messages, 1)
	assert.Equal(t, strings.Repeat("나", reportChunkSize), messages[0].Content)
}

func TestStreamReportNotReady(t *testing.T) {
	svc, caseRepo, chatRepo := newTestChatService()
	require.NoError(t, caseRepo.Create(&model.AnalysisCase{ID: "case-1", State: model.StateParseEnrich}))

	var frames [][]byte
	err := svc.StreamReport(context.Background(), "case-1", &model.User{ID: 3}, collectFrames(&frames), nil)
	assert.ErrorIs(t, err, ErrReportNotReady)
	assert.Empty(t, frames)
	assert.Empty(t, chatRepo.messages["case-1"])
}

func TestStreamReportCaseNotFound(t *testing.T) {
	svc, _, _ := newTestChatService()

	var frames [][]byte
	err := svc.StreamReport(context.Background(), "no-such", &model.User{ID: 3}, collectFrames(&frames), nil)
	assert.ErrorIs(t, err, ErrCaseNotFound)
	assert.Empty(t, frames)
}

func TestStreamReportSendFailure(t *testing.T) {
	svc, caseRepo, chatRepo := newTestChatService()
	require.NoError(t, caseRepo.Create(reportCase(strings.Repeat("다", 300))))

	sendErr := assert.AnError
	err := svc.StreamReport(context.Background(), "case-1", &model.User{ID: 3},
		func(b []byte) error { return sendErr }, nil)
	assert.ErrorIs(t, err, sendErr)
	assert.Empty(t, chatRepo.messages["case-1"])
}
