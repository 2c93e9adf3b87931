package database

import (
	"context"

	"zipcheck-go/pkg/log"

	"github.com/go-redis/redis/v8"
)

var RDB *redis.Client

// InitRedis 는 Redis 클라이언트 연결을 초기화한다.
func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 연결 확인
	ctx := context.Background()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis 연결 실패", err)
	}

	log.Info("Redis 클라이언트 연결 성공")
}
