package repository

import (
	"zipcheck-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository 인터페이스는 수집 매물의 영속화 작업을 정의한다.
type ListingRepository interface {
	Upsert(listing *model.Listing) error
	FindWithPagination(region string, offset, limit int) ([]model.Listing, int64, error)
}

// listingRepository 는 ListingRepository 의 GORM 구현이다.
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository 는 새 ListingRepository 인스턴스를 생성한다.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Upsert 는 (source, source_id, region) 기준으로 매물을 삽입하거나 갱신한다.
// 같은 매물이 재수집되면 가격과 수집 시각만 새 값으로 덮는다.
func (r *listingRepository) Upsert(listing *model.Listing) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source"}, {Name: "source_id"}, {Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "address", "price", "deposit", "monthly_rent", "area", "floor", "url", "crawled_at",
		}),
	}).Create(listing).Error
}

// FindWithPagination 은 매물 목록을 페이지 단위로 조회한다.
func (r *listingRepository) FindWithPagination(region string, offset, limit int) ([]model.Listing, int64, error) {
	var listings []model.Listing
	var total int64

	db := r.db.Model(&model.Listing{})
	if region != "" {
		db = db.Where("region = ?", region)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).Order("crawled_at DESC").Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}
