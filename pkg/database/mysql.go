package database

import (
	"time"

	"zipcheck-go/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitMySQL 은 MySQL 데이터베이스 연결을 초기화한다.
func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("데이터베이스 연결 실패", err)
	}

	// 커넥션 풀 설정
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("sql.DB 획득 실패", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("MySQL 데이터베이스 연결 성공")
}
