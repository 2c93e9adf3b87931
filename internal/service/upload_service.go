package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"zipcheck-go/internal/config"
	"zipcheck-go/internal/model"
	"zipcheck-go/internal/repository"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// 등기부 PDF 최대 크기 (20MB)
const maxRegistryFileSize = 20 * 1024 * 1024

// ErrInvalidFile 업로드 파일 형식/크기 오류
var ErrInvalidFile = errors.New("invalid registry file")

// UploadService 인터페이스는 등기부 파일 업로드 작업을 정의한다.
type UploadService interface {
	UploadRegistry(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID *uint) (*model.RegistryFile, error)
	GetDownloadURL(fileID uint) (string, error)
	FetchRegistry(ctx context.Context, fileID uint) ([]byte, string, error)
}

type uploadService struct {
	registryFileRepo repository.RegistryFileRepository
	minioCfg         config.MinIOConfig
}

// NewUploadService 는 새 UploadService 인스턴스를 생성한다.
func NewUploadService(registryFileRepo repository.RegistryFileRepository, minioCfg config.MinIOConfig) UploadService {
	return &uploadService{
		registryFileRepo: registryFileRepo,
		minioCfg:         minioCfg,
	}
}

// UploadRegistry 는 등기부 PDF 를 MinIO 에 올리고 파일 레코드를 만든다.
func (s *uploadService) UploadRegistry(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID *uint) (*model.RegistryFile, error) {
	if header.Size <= 0 || header.Size > maxRegistryFileSize {
		return nil, fmt.Errorf("%w: 파일 크기는 20MB 이하여야 합니다", ErrInvalidFile)
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		return nil, fmt.Errorf("%w: PDF 파일만 업로드할 수 있습니다", ErrInvalidFile)
	}

	objectName := fmt.Sprintf("registry/%s/%s", time.Now().Format("2006-01"), uuid.NewString()+".pdf")
	_, err := storage.MinioClient.PutObject(ctx, s.minioCfg.BucketName, objectName, file, header.Size,
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		log.Errorf("등기부 파일 MinIO 업로드 실패: objectName=%s err=%v", objectName, err)
		return nil, fmt.Errorf("파일 업로드 실패: %w", err)
	}

	record := &model.RegistryFile{
		ObjectName:  objectName,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: "application/pdf",
		UserID:      userID,
	}
	if err := s.registryFileRepo.Create(record); err != nil {
		log.Errorf("등기부 파일 레코드 생성 실패: err=%v", err)
		return nil, fmt.Errorf("파일 레코드 생성 실패: %w", err)
	}

	log.Infof("등기부 파일 업로드 완료: fileID=%d objectName=%s size=%d", record.ID, objectName, header.Size)
	return record, nil
}

// GetDownloadURL 은 업로드된 파일의 프리사인 URL 을 발급한다 (1시간 유효).
func (s *uploadService) GetDownloadURL(fileID uint) (string, error) {
	record, err := s.registryFileRepo.FindByID(fileID)
	if err != nil {
		return "", fmt.Errorf("파일을 찾을 수 없습니다: %w", err)
	}
	return storage.GetPresignedURL(s.minioCfg.BucketName, record.ObjectName, time.Hour)
}

// FetchRegistry 는 MinIO 에서 등기부 PDF 원본을 내려받는다. 분석 파이프라인에서 사용한다.
func (s *uploadService) FetchRegistry(ctx context.Context, fileID uint) ([]byte, string, error) {
	record, err := s.registryFileRepo.FindByID(fileID)
	if err != nil {
		return nil, "", fmt.Errorf("파일을 찾을 수 없습니다: %w", err)
	}

	obj, err := storage.MinioClient.GetObject(ctx, s.minioCfg.BucketName, record.ObjectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("파일 다운로드 실패: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("파일 읽기 실패: %w", err)
	}
	return data, record.FileName, nil
}
