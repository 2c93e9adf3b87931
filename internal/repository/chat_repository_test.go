package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipcheck-go/internal/model"
)

func newTestChatRepository(t *testing.T) (ChatRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewChatRepository(client), mr
}

func chatMessage(role, content string) model.ChatMessage {
	return model.ChatMessage{
		ID:        fmt.Sprintf("msg-%s-%d", role, time.Now().UnixNano()),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func TestChatMessagesRoundTrip(t *testing.T) {
	repo, _ := newTestChatRepository(t)
	ctx := context.Background()

	// 이력이 없으면 빈 슬라이스
	messages, err := repo.GetMessages(ctx, "case-1")
	require.NoError(t, err)
	assert.Empty(t, messages)

	require.NoError(t, repo.AppendMessages(ctx, "case-1",
		chatMessage("assistant", "주소를 입력해 주세요"),
		chatMessage("user", "테헤란로 123"),
	))

	messages, err = repo.GetMessages(ctx, "case-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "assistant", messages[0].Role)
	assert.Equal(t, "테헤란로 123", messages[1].Content)

	// 케이스별로 분리 보관된다
	other, err := repo.GetMessages(ctx, "case-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestChatMessagesTrimToRecent(t *testing.T) {
	repo, _ := newTestChatRepository(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		require.NoError(t, repo.AppendMessages(ctx, "case-1",
			chatMessage("user", fmt.Sprintf("메시지 %d", i))))
	}

	messages, err := repo.GetMessages(ctx, "case-1")
	require.NoError(t, err)
	require.Len(t, messages, chatMaxMessages)
	assert.Equal(t, "메시지 10", messages[0].Content, "오래된 메시지부터 버린다")
	assert.Equal(t, "메시지 59", messages[len(messages)-1].Content)
}

func TestChatMessagesExpire(t *testing.T) {
	repo, mr := newTestChatRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendMessages(ctx, "case-1", chatMessage("user", "안녕하세요")))

	ttl := mr.TTL(chatKey("case-1"))
	assert.Equal(t, chatTTL, ttl)

	mr.FastForward(chatTTL + time.Minute)
	messages, err := repo.GetMessages(ctx, "case-1")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestProgressPublishSubscribe(t *testing.T) {
	repo, _ := newTestChatRepository(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	events, unsubscribe, err := repo.SubscribeProgress(ctx, "case-1")
	require.NoError(t, err)
	defer unsubscribe()

	want := model.ProgressEvent{
		CaseID: "case-1",
		Step:   "registry_parse",
		Status: "done",
	}
	require.NoError(t, repo.PublishProgress(ctx, want))

	select {
	case got := <-events:
		assert.Equal(t, want.CaseID, got.CaseID)
		assert.Equal(t, want.Step, got.Step)
		assert.Equal(t, want.Status, got.Status)
	case <-ctx.Done():
		t.Fatal("진행 이벤트를 받지 못했다")
	}
}

func TestProgressSubscribeIsPerCase(t *testing.T) {
	repo, _ := newTestChatRepository(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, unsubscribe, err := repo.SubscribeProgress(ctx, "case-1")
	require.NoError(t, err)
	defer unsubscribe()

	// 다른 케이스의 이벤트는 전달되지 않는다
	require.NoError(t, repo.PublishProgress(ctx, model.ProgressEvent{
		CaseID: "case-2", Step: "registry_parse", Status: "started",
	}))
	require.NoError(t, repo.PublishProgress(ctx, model.ProgressEvent{
		CaseID: "case-1", Step: "trade_enrich", Status: "started",
	}))

	select {
	case got := <-events:
		assert.Equal(t, "case-1", got.CaseID)
		assert.Equal(t, "trade_enrich", got.Step)
	case <-ctx.Done():
		t.Fatal("진행 이벤트를 받지 못했다")
	}
}
