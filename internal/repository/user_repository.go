// Package repository 는 데이터 접근 계층의 인터페이스와 구현을 정의한다.
package repository

import (
	"zipcheck-go/internal/model"

	"gorm.io/gorm"
)

// UserRepository 인터페이스는 사용자 데이터의 영속화 작업을 정의한다.
type UserRepository interface {
	Create(user *model.User) error
	FindByEmail(email string) (*model.User, error)
	FindByID(userID uint) (*model.User, error)
	Update(user *model.User) error
	FindWithPagination(offset, limit int) ([]model.User, int64, error)
	CountAll() (int64, error)
	CountByChannel() (map[string]int64, error)
}

// userRepository 는 UserRepository 의 GORM 구현이다.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 는 새 UserRepository 인스턴스를 생성한다.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 는 새 사용자 레코드를 생성한다.
func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByEmail 은 이메일로 사용자를 조회한다.
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID 는 사용자 ID 로 조회한다.
func (r *userRepository) FindByID(userID uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update 는 기존 사용자 레코드를 갱신한다.
func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// FindWithPagination 은 사용자 목록을 페이지 단위로 조회한다.
// 목록, 전체 건수, 오류를 반환한다.
func (r *userRepository) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.Model(&model.User{})

	err := db.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// CountAll 은 전체 사용자 수를 반환한다.
func (r *userRepository) CountAll() (int64, error) {
	var total int64
	err := r.db.Model(&model.User{}).Count(&total).Error
	return total, err
}

// CountByChannel 은 유입 채널별 사용자 수를 반환한다.
func (r *userRepository) CountByChannel() (map[string]int64, error) {
	type row struct {
		Channel string
		Cnt     int64
	}
	var rows []row
	err := r.db.Model(&model.User{}).
		Select("channel, COUNT(*) AS cnt").
		Group("channel").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, rw := range rows {
		result[rw.Channel] = rw.Cnt
	}
	return result, nil
}
