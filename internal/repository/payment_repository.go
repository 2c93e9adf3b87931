package repository

import (
	"zipcheck-go/internal/model"

	"gorm.io/gorm"
)

// PaymentRepository 인터페이스는 결제 레코드의 영속화 작업을 정의한다.
type PaymentRepository interface {
	Create(p *model.Payment) error
	FindWithPagination(offset, limit int) ([]model.Payment, int64, error)
	SumPaidAmount() (int64, error)
}

// paymentRepository 는 PaymentRepository 의 GORM 구현이다.
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 는 새 PaymentRepository 인스턴스를 생성한다.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create 는 새 결제 레코드를 생성한다.
func (r *paymentRepository) Create(p *model.Payment) error {
	return r.db.Create(p).Error
}

// FindWithPagination 은 결제 목록을 페이지 단위로 조회한다.
func (r *paymentRepository) FindWithPagination(offset, limit int) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := r.db.Model(&model.Payment{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// SumPaidAmount 는 paid 상태 결제의 합계 금액(원)을 반환한다.
func (r *paymentRepository) SumPaidAmount() (int64, error) {
	var total int64
	err := r.db.Model(&model.Payment{}).
		Where("status = ?", "paid").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
