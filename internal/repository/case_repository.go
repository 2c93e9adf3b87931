package repository

import (
	"zipcheck-go/internal/model"

	"gorm.io/gorm"
)

// CaseRepository 인터페이스는 분석 케이스의 영속화 작업을 정의한다.
type CaseRepository interface {
	Create(c *model.AnalysisCase) error
	FindByID(id string) (*model.AnalysisCase, error)
	Update(c *model.AnalysisCase) error
	FindWithPagination(state string, offset, limit int) ([]model.AnalysisCase, int64, error)
	CountAll() (int64, error)
	CountByState() (map[string]int64, error)
	CountCompleted() (int64, error)
}

// caseRepository 는 CaseRepository 의 GORM 구현이다.
type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository 는 새 CaseRepository 인스턴스를 생성한다.
func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepository{db: db}
}

// Create 는 새 케이스 레코드를 생성한다.
func (r *caseRepository) Create(c *model.AnalysisCase) error {
	return r.db.Create(c).Error
}

// FindByID 는 케이스 ID 로 조회한다.
func (r *caseRepository) FindByID(id string) (*model.AnalysisCase, error) {
	var c model.AnalysisCase
	err := r.db.Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update 는 기존 케이스 레코드를 갱신한다.
func (r *caseRepository) Update(c *model.AnalysisCase) error {
	return r.db.Save(c).Error
}

// FindWithPagination 은 케이스 목록을 페이지 단위로 조회한다.
// state 가 비어 있지 않으면 해당 상태만 필터링한다.
func (r *caseRepository) FindWithPagination(state string, offset, limit int) ([]model.AnalysisCase, int64, error) {
	var cases []model.AnalysisCase
	var total int64

	db := r.db.Model(&model.AnalysisCase{})
	if state != "" {
		db = db.Where("state = ?", state)
	}

	err := db.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&cases).Error
	if err != nil {
		return nil, 0, err
	}

	return cases, total, nil
}

// CountAll 은 전체 케이스 수를 반환한다.
func (r *caseRepository) CountAll() (int64, error) {
	var total int64
	err := r.db.Model(&model.AnalysisCase{}).Count(&total).Error
	return total, err
}

// CountByState 는 상태별 케이스 수를 반환한다. 퍼널 차트의 원천 데이터다.
func (r *caseRepository) CountByState() (map[string]int64, error) {
	type row struct {
		State string
		Cnt   int64
	}
	var rows []row
	err := r.db.Model(&model.AnalysisCase{}).
		Select("state, COUNT(*) AS cnt").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, rw := range rows {
		result[rw.State] = rw.Cnt
	}
	return result, nil
}

// CountCompleted 는 리포트까지 완료된 케이스 수를 반환한다.
func (r *caseRepository) CountCompleted() (int64, error) {
	var total int64
	err := r.db.Model(&model.AnalysisCase{}).
		Where("state = ?", model.StateReport).
		Count(&total).Error
	return total, err
}
