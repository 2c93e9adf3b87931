package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zipcheck-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// ChatRepository 인터페이스는 케이스 세션별 대화 메시지의 보관 작업을 정의한다.
// 메시지는 Redis 에 JSON 목록으로 보관되며 7일 뒤 만료된다.
type ChatRepository interface {
	GetMessages(ctx context.Context, caseID string) ([]model.ChatMessage, error)
	AppendMessages(ctx context.Context, caseID string, messages ...model.ChatMessage) error
	PublishProgress(ctx context.Context, event model.ProgressEvent) error
	SubscribeProgress(ctx context.Context, caseID string) (<-chan model.ProgressEvent, func(), error)
}

type redisChatRepository struct {
	redisClient *redis.Client
}

// NewChatRepository 는 새 ChatRepository 인스턴스를 생성한다.
func NewChatRepository(redisClient *redis.Client) ChatRepository {
	return &redisChatRepository{redisClient: redisClient}
}

const (
	chatTTL         = 7 * 24 * time.Hour
	chatMaxMessages = 50
)

func chatKey(caseID string) string {
	return fmt.Sprintf("chat:%s", caseID)
}

func progressChannel(caseID string) string {
	return fmt.Sprintf("case:progress:%s", caseID)
}

// GetMessages 는 케이스의 대화 이력을 조회한다. 이력이 없으면 빈 슬라이스를 반환한다.
func (r *redisChatRepository) GetMessages(ctx context.Context, caseID string) ([]model.ChatMessage, error) {
	jsonData, err := r.redisClient.Get(ctx, chatKey(caseID)).Result()
	if err == redis.Nil {
		return []model.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("대화 이력 조회 실패: %w", err)
	}
	var messages []model.ChatMessage
	if err := json.Unmarshal([]byte(jsonData), &messages); err != nil {
		return nil, fmt.Errorf("대화 이력 파싱 실패: %w", err)
	}
	return messages, nil
}

// AppendMessages 는 대화 이력 끝에 메시지를 추가한다. 최근 50건만 보관한다.
func (r *redisChatRepository) AppendMessages(ctx context.Context, caseID string, messages ...model.ChatMessage) error {
	history, err := r.GetMessages(ctx, caseID)
	if err != nil {
		return err
	}
	history = append(history, messages...)
	if len(history) > chatMaxMessages {
		history = history[len(history)-chatMaxMessages:]
	}
	jsonData, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("대화 이력 직렬화 실패: %w", err)
	}
	if err := r.redisClient.Set(ctx, chatKey(caseID), jsonData, chatTTL).Err(); err != nil {
		return fmt.Errorf("대화 이력 저장 실패: %w", err)
	}
	return nil
}

// PublishProgress 는 파이프라인 진행 이벤트를 케이스 채널에 발행한다.
func (r *redisChatRepository) PublishProgress(ctx context.Context, event model.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("진행 이벤트 직렬화 실패: %w", err)
	}
	return r.redisClient.Publish(ctx, progressChannel(event.CaseID), payload).Err()
}

// SubscribeProgress 는 케이스의 진행 이벤트 채널을 구독한다.
// 반환된 해제 함수를 호출하면 구독이 종료된다.
func (r *redisChatRepository) SubscribeProgress(ctx context.Context, caseID string) (<-chan model.ProgressEvent, func(), error) {
	pubsub := r.redisClient.Subscribe(ctx, progressChannel(caseID))
	// 구독 확립을 기다린다
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("진행 채널 구독 실패: %w", err)
	}

	out := make(chan model.ProgressEvent)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event model.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return out, cancel, nil
}
