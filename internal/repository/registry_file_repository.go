package repository

import (
	"zipcheck-go/internal/model"

	"gorm.io/gorm"
)

// RegistryFileRepository 인터페이스는 업로드된 등기부 파일 메타데이터의 영속화 작업을 정의한다.
type RegistryFileRepository interface {
	Create(f *model.RegistryFile) error
	FindByID(id uint) (*model.RegistryFile, error)
}

// registryFileRepository 는 RegistryFileRepository 의 GORM 구현이다.
type registryFileRepository struct {
	db *gorm.DB
}

// NewRegistryFileRepository 는 새 RegistryFileRepository 인스턴스를 생성한다.
func NewRegistryFileRepository(db *gorm.DB) RegistryFileRepository {
	return &registryFileRepository{db: db}
}

// Create 는 새 등기부 파일 레코드를 생성한다.
func (r *registryFileRepository) Create(f *model.RegistryFile) error {
	return r.db.Create(f).Error
}

// FindByID 는 파일 ID 로 조회한다.
func (r *registryFileRepository) FindByID(id uint) (*model.RegistryFile, error) {
	var f model.RegistryFile
	err := r.db.First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}
