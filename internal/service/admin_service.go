package service

import (
	"context"
	"errors"
	"fmt"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/repository"
	"zipcheck-go/pkg/es"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/tasks"
)

// ErrUserNotFound 사용자 없음
var ErrUserNotFound = errors.New("user not found")

// DashboardKPIs 대시보드 핵심 지표
type DashboardKPIs struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalCases     int64 `json:"totalCases"`
	CompletedCases int64 `json:"completedCases"`
	TotalRevenue   int64 `json:"totalRevenue"`
}

// FunnelStep 단계별 이탈 퍼널 항목
type FunnelStep struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// EnqueueCrawl 크롤링 태스크 발행 함수 타입
type EnqueueCrawl func(task tasks.CrawlTask) error

// AdminService 인터페이스는 관리자 대시보드 관련 작업을 정의한다.
type AdminService interface {
	GetKPIs() (*DashboardKPIs, error)
	GetFunnel() ([]FunnelStep, error)
	GetChannels() (map[string]int64, error)
	ListUsers(page, size int) ([]model.User, int64, error)
	ListCases(page, size int, state string) ([]model.AnalysisCase, int64, error)
	ListPayments(page, size int) ([]model.Payment, int64, error)
	UpdateUserRole(userID uint, role string) error
	TriggerCrawl(source, region string) error
	SearchListings(ctx context.Context, query, region string, size int) ([]model.EsListing, error)
}

type adminService struct {
	userRepo    repository.UserRepository
	caseRepo    repository.CaseRepository
	paymentRepo repository.PaymentRepository
	esIndex     string
	enqueue     EnqueueCrawl
}

// NewAdminService 는 새 AdminService 인스턴스를 생성한다.
func NewAdminService(userRepo repository.UserRepository, caseRepo repository.CaseRepository,
	paymentRepo repository.PaymentRepository, esIndex string, enqueue EnqueueCrawl) AdminService {
	return &adminService{
		userRepo:    userRepo,
		caseRepo:    caseRepo,
		paymentRepo: paymentRepo,
		esIndex:     esIndex,
		enqueue:     enqueue,
	}
}

// GetKPIs 는 사용자/케이스/완료/매출 지표를 모아서 반환한다.
func (s *adminService) GetKPIs() (*DashboardKPIs, error) {
	users, err := s.userRepo.CountAll()
	if err != nil {
		return nil, fmt.Errorf("사용자 수 조회 실패: %w", err)
	}
	cases, err := s.caseRepo.CountAll()
	if err != nil {
		return nil, fmt.Errorf("케이스 수 조회 실패: %w", err)
	}
	completed, err := s.caseRepo.CountCompleted()
	if err != nil {
		return nil, fmt.Errorf("완료 케이스 수 조회 실패: %w", err)
	}
	revenue, err := s.paymentRepo.SumPaidAmount()
	if err != nil {
		return nil, fmt.Errorf("매출 합계 조회 실패: %w", err)
	}
	return &DashboardKPIs{
		TotalUsers:     users,
		TotalCases:     cases,
		CompletedCases: completed,
		TotalRevenue:   revenue,
	}, nil
}

// GetFunnel 은 마법사 단계 순서대로 각 단계 케이스 수를 반환한다.
func (s *adminService) GetFunnel() ([]FunnelStep, error) {
	counts, err := s.caseRepo.CountByState()
	if err != nil {
		return nil, fmt.Errorf("단계별 케이스 집계 실패: %w", err)
	}
	steps := make([]FunnelStep, 0, len(model.WizardStates)+1)
	for _, state := range model.WizardStates {
		steps = append(steps, FunnelStep{State: state, Count: counts[state]})
	}
	steps = append(steps, FunnelStep{State: model.StateError, Count: counts[model.StateError]})
	return steps, nil
}

// GetChannels 는 가입 채널별 사용자 수를 반환한다.
func (s *adminService) GetChannels() (map[string]int64, error) {
	counts, err := s.userRepo.CountByChannel()
	if err != nil {
		return nil, fmt.Errorf("채널별 사용자 집계 실패: %w", err)
	}
	return counts, nil
}

// ListUsers 는 사용자 목록을 페이지네이션으로 조회한다.
func (s *adminService) ListUsers(page, size int) ([]model.User, int64, error) {
	offset, limit := pageToOffset(page, size)
	return s.userRepo.FindWithPagination(offset, limit)
}

// ListCases 는 케이스 목록을 상태 필터와 함께 조회한다.
func (s *adminService) ListCases(page, size int, state string) ([]model.AnalysisCase, int64, error) {
	offset, limit := pageToOffset(page, size)
	return s.caseRepo.FindWithPagination(state, offset, limit)
}

// ListPayments 는 결제 목록을 페이지네이션으로 조회한다.
func (s *adminService) ListPayments(page, size int) ([]model.Payment, int64, error) {
	offset, limit := pageToOffset(page, size)
	return s.paymentRepo.FindWithPagination(offset, limit)
}

// UpdateUserRole 은 사용자 권한을 변경한다.
func (s *adminService) UpdateUserRole(userID uint, role string) error {
	if role != "USER" && role != "ADMIN" {
		return fmt.Errorf("잘못된 권한 값: %s", role)
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("권한 변경 실패: %w", err)
	}
	log.Infof("사용자 권한 변경: userID=%d role=%s", userID, role)
	return nil
}

// TriggerCrawl 은 수동 크롤링 태스크를 발행한다.
func (s *adminService) TriggerCrawl(source, region string) error {
	if source == "" {
		return errors.New("크롤링 소스가 비어 있습니다")
	}
	if err := s.enqueue(tasks.CrawlTask{Source: source, Region: region}); err != nil {
		return fmt.Errorf("크롤링 태스크 발행 실패: %w", err)
	}
	log.Infof("크롤링 태스크 발행: source=%s region=%s", source, region)
	return nil
}

// SearchListings 는 Elasticsearch 에서 매물을 검색한다.
func (s *adminService) SearchListings(ctx context.Context, query, region string, size int) ([]model.EsListing, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	listings, err := es.SearchListings(ctx, s.esIndex, query, region, size)
	if err != nil {
		return nil, fmt.Errorf("매물 검색 실패: %w", err)
	}
	return listings, nil
}

// pageToOffset 페이지 파라미터를 보정하고 offset/limit 으로 바꾼다.
func pageToOffset(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return (page - 1) * size, size
}
