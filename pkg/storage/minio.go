// Package storage 는 오브젝트 스토리지(MinIO) 연동 기능을 제공한다.
// 업로드된 등기부등본 PDF 가 여기 보관된다.
package storage

import (
	"context"
	"time"

	"zipcheck-go/internal/config"
	"zipcheck-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient 는 전역 MinIO 클라이언트 인스턴스다.
var MinioClient *minio.Client

// InitMinIO 는 MinIO 클라이언트를 초기화하고 버킷 존재를 보장한다.
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	// 1. MinIO 클라이언트 초기화
	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("MinIO 클라이언트 초기화 실패", err)
	}

	log.Info("MinIO 클라이언트 초기화 성공")

	// 2. 버킷이 없으면 생성한다
	ctx := context.Background()
	bucketName := cfg.BucketName
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("MinIO 버킷 확인 실패", err)
	}

	if !exists {
		log.Infof("버킷 '%s' 이(가) 없어 생성합니다...", bucketName)
		err = MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			log.Fatal("MinIO 버킷 생성 실패", err)
		}
		log.Infof("버킷 '%s' 생성 완료", bucketName)
	} else {
		log.Infof("버킷 '%s' 이(가) 이미 존재합니다", bucketName)
	}
}

// GetPresignedURL 은 오브젝트에 대한 presigned GET URL 을 발급한다.
// 관리자 화면에서 원본 등기부를 열람할 때 사용한다.
func GetPresignedURL(bucketName, objectName string, expiry time.Duration) (string, error) {
	presignedURL, err := MinioClient.PresignedGetObject(context.Background(), bucketName, objectName, expiry, nil)
	if err != nil {
		log.Errorf("presigned URL 발급 실패: %s", err)
		return "", err
	}
	return presignedURL.String(), nil
}
