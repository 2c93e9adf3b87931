// Package kafka 는 Kafka 메시지 큐 연동 기능을 제공한다.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zipcheck-go/internal/config"
	"zipcheck-go/pkg/database"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
)

// AnalysisProcessor 는 등기부 분석 작업을 처리할 수 있는 서비스의 인터페이스다.
// 컨슈머와 실제 파이프라인 구현을 분리한다.
type AnalysisProcessor interface {
	Process(ctx context.Context, task tasks.AnalysisTask) error
}

// CrawlProcessor 는 매물 수집 작업을 처리할 수 있는 서비스의 인터페이스다.
type CrawlProcessor interface {
	Process(ctx context.Context, task tasks.CrawlTask) error
}

var (
	analysisProducer *kafka.Writer
	crawlProducer    *kafka.Writer
)

// InitProducers 는 분석/수집 작업용 Kafka 생산자를 초기화한다.
func InitProducers(cfg config.KafkaConfig) {
	analysisProducer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.AnalysisTopic,
		Balancer: &kafka.LeastBytes{},
	}
	crawlProducer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.CrawlTopic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 생산자 초기화 성공")
}

// ProduceAnalysisTask 는 등기부 분석 작업을 Kafka 로 발행한다.
func ProduceAnalysisTask(task tasks.AnalysisTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return analysisProducer.WriteMessages(context.Background(),
		kafka.Message{Value: taskBytes},
	)
}

// ProduceCrawlTask 는 매물 수집 작업을 Kafka 로 발행한다.
func ProduceCrawlTask(task tasks.CrawlTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return crawlProducer.WriteMessages(context.Background(),
		kafka.Message{Value: taskBytes},
	)
}

// StartAnalysisConsumer 는 등기부 분석 작업 컨슈머를 시작한다.
// 같은 케이스가 3회 이상 실패하면 offset 을 커밋해 재시도를 끊는다.
func StartAnalysisConsumer(cfg config.KafkaConfig, processor AnalysisProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.AnalysisTopic,
		GroupID:  "zipcheck-analysis-consumer",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 분석 컨슈머 시작, 토픽 '%s' 수신 중", cfg.AnalysisTopic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("Kafka 메시지 읽기 실패", err)
			break
		}

		var task tasks.AnalysisTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("Kafka 메시지 파싱 불가: %v, value: %s", err, string(m.Value))
			// 형식이 깨진 메시지는 바로 커밋해 큐가 막히지 않게 한다
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("불량 메시지 커밋 실패: %v", err)
			}
			continue
		}

		log.Infof("분석 작업 시작: caseId=%s, method=%s", task.CaseID, task.RegistryMethod)
		if err := processor.Process(context.Background(), task); err != nil {
			log.Errorf("분석 작업 실패: caseId=%s, error: %v", task.CaseID, err)
			// Redis 로 실패 횟수를 세고, 임계치 도달 시 offset 커밋으로 재시도를 종료한다
			attemptsKey := fmt.Sprintf("kafka:attempts:%s", task.CaseID)
			attempts, incErr := database.RDB.Incr(context.Background(), attemptsKey).Result()
			if incErr == nil {
				_ = database.RDB.Expire(context.Background(), attemptsKey, 24*time.Hour).Err()
			}
			if incErr != nil {
				// Redis 장애 시 보수적으로 커밋하지 않고 Kafka 재시도에 맡긴다
				continue
			}
			if attempts >= 3 {
				log.Errorf("분석 작업 3회 이상 실패, 재시도 종료: caseId=%s", task.CaseID)
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("Kafka offset 커밋 실패: %v", err)
				}
			}
		} else {
			log.Infof("분석 작업 성공: caseId=%s", task.CaseID)
			_ = database.RDB.Del(context.Background(), fmt.Sprintf("kafka:attempts:%s", task.CaseID)).Err()
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("Kafka offset 커밋 실패: %v", err)
			}
		}
	}

	if err := r.Close(); err != nil {
		log.Fatalf("Kafka 분석 컨슈머 종료 실패: %v", err)
	}
}

// StartCrawlConsumer 는 매물 수집 작업 컨슈머를 시작한다.
// 수집 실패는 치명적이지 않으므로 재시도 없이 커밋한다.
func StartCrawlConsumer(cfg config.KafkaConfig, processor CrawlProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.CrawlTopic,
		GroupID:  "zipcheck-crawl-consumer",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	log.Infof("Kafka 수집 컨슈머 시작, 토픽 '%s' 수신 중", cfg.CrawlTopic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("Kafka 메시지 읽기 실패", err)
			break
		}

		var task tasks.CrawlTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("Kafka 메시지 파싱 불가: %v, value: %s", err, string(m.Value))
		} else if err := processor.Process(context.Background(), task); err != nil {
			log.Errorf("수집 작업 실패: source=%s, region=%s, error: %v", task.Source, task.Region, err)
		}

		if err := r.CommitMessages(context.Background(), m); err != nil {
			log.Errorf("Kafka offset 커밋 실패: %v", err)
		}
	}

	if err := r.Close(); err != nil {
		log.Fatalf("Kafka 수집 컨슈머 종료 실패: %v", err)
	}
}
