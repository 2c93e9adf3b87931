package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/repository"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/tasks"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 케이스 워크플로 위반에 쓰는 sentinel 에러.
var (
	ErrCaseNotFound   = errors.New("케이스를 찾을 수 없습니다")
	ErrWrongState     = errors.New("현재 단계에서 허용되지 않는 요청입니다")
	ErrInvalidInput   = errors.New("잘못된 입력입니다")
	ErrReportNotReady = errors.New("리포트가 아직 생성되지 않았습니다")
)

// AddressInput 은 주소 선택 단계의 입력이다.
type AddressInput struct {
	RoadAddr     string `json:"roadAddr" binding:"required"`
	JibunAddr    string `json:"jibunAddr"`
	ZipNo        string `json:"zipNo"`
	BuildingName string `json:"buildingName"`
	AdmCd        string `json:"admCd"`
	LawdCd       string `json:"lawdCd"`
	Dong         string `json:"dong"`
}

// PriceInput 은 가격 입력 단계의 입력이다. 단위는 만원이다.
type PriceInput struct {
	Deposit     int64 `json:"deposit"`
	MonthlyRent int64 `json:"monthlyRent"`
	SalePrice   int64 `json:"salePrice"`
}

// EnqueueAnalysis 는 분석 작업을 큐에 넣는 함수 타입이다.
type EnqueueAnalysis func(task tasks.AnalysisTask) error

// CaseService 인터페이스는 분석 케이스 마법사의 단계별 작업을 정의한다.
// 모든 단계는 케이스가 기대 상태일 때만 진행되며, 아니면 ErrWrongState 를 반환한다.
type CaseService interface {
	CreateCase(ctx context.Context, userID *uint) (*model.AnalysisCase, error)
	GetCase(id string) (*model.AnalysisCase, error)
	SetAddress(ctx context.Context, id string, input AddressInput) (*model.AnalysisCase, error)
	SetContractType(ctx context.Context, id, contractType string) (*model.AnalysisCase, error)
	SetPrice(ctx context.Context, id string, input PriceInput) (*model.AnalysisCase, error)
	ChooseRegistry(ctx context.Context, id, method string, fileID uint) (*model.AnalysisCase, error)
	GetReport(id string) (string, error)
	FailCase(ctx context.Context, id, message string) error
	CompleteCase(ctx context.Context, id, reportMarkdown string) error
	GetMessages(ctx context.Context, id string) ([]model.ChatMessage, error)
}

type caseService struct {
	caseRepo         repository.CaseRepository
	registryFileRepo repository.RegistryFileRepository
	chatRepo         repository.ChatRepository
	enqueue          EnqueueAnalysis
}

// NewCaseService 는 새 CaseService 인스턴스를 생성한다.
func NewCaseService(
	caseRepo repository.CaseRepository,
	registryFileRepo repository.RegistryFileRepository,
	chatRepo repository.ChatRepository,
	enqueue EnqueueAnalysis,
) CaseService {
	return &caseService{
		caseRepo:         caseRepo,
		registryFileRepo: registryFileRepo,
		chatRepo:         chatRepo,
		enqueue:          enqueue,
	}
}

// CreateCase 는 새 케이스를 만들고 첫 단계(주소 선택)로 진입시킨다.
func (s *caseService) CreateCase(ctx context.Context, userID *uint) (*model.AnalysisCase, error) {
	c := &model.AnalysisCase{
		ID:     uuid.NewString(),
		UserID: userID,
		State:  model.StateAddressPick,
	}
	if err := s.caseRepo.Create(c); err != nil {
		return nil, err
	}

	s.appendAssistant(ctx, c.ID,
		"안녕하세요! 집체크입니다. 계약하려는 집의 주소를 알려주세요.",
		"address_form", nil)
	return c, nil
}

// GetCase 는 케이스 현재 상태를 조회한다.
func (s *caseService) GetCase(id string) (*model.AnalysisCase, error) {
	c, err := s.caseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return c, nil
}

// SetAddress 는 주소 선택 단계를 처리하고 계약 유형 단계로 전진한다.
func (s *caseService) SetAddress(ctx context.Context, id string, input AddressInput) (*model.AnalysisCase, error) {
	c, err := s.requireState(id, model.StateAddressPick)
	if err != nil {
		return nil, err
	}

	c.RoadAddr = input.RoadAddr
	c.JibunAddr = input.JibunAddr
	c.ZipNo = input.ZipNo
	c.BuildingName = input.BuildingName
	c.AdmCd = input.AdmCd
	c.LawdCd = input.LawdCd
	if c.LawdCd == "" && len(input.AdmCd) >= 5 {
		c.LawdCd = input.AdmCd[:5]
	}
	c.Dong = input.Dong
	c.State = model.NextState(c.State)

	if err := s.caseRepo.Update(c); err != nil {
		return nil, err
	}

	s.appendUser(ctx, c.ID, input.RoadAddr)
	s.appendAssistant(ctx, c.ID,
		"어떤 계약인가요? 전세, 월세, 매매 중에서 골라 주세요.",
		"contract_type_picker", nil)
	return c, nil
}

// SetContractType 은 계약 유형 단계를 처리하고 가격 입력 단계로 전진한다.
func (s *caseService) SetContractType(ctx context.Context, id, contractType string) (*model.AnalysisCase, error) {
	if !model.ValidContractType(contractType) {
		return nil, fmt.Errorf("%w: 계약 유형은 전세/월세/매매 중 하나여야 합니다", ErrInvalidInput)
	}

	c, err := s.requireState(id, model.StateContractType)
	if err != nil {
		return nil, err
	}

	c.ContractType = contractType
	c.State = model.NextState(c.State)
	if err := s.caseRepo.Update(c); err != nil {
		return nil, err
	}

	s.appendUser(ctx, c.ID, contractType)
	s.appendAssistant(ctx, c.ID,
		priceQuestion(contractType),
		"price_form", json.RawMessage(fmt.Sprintf(`{"contractType":%q}`, contractType)))
	return c, nil
}

// priceQuestion 은 계약 유형에 맞는 가격 질문 문구를 고른다.
func priceQuestion(contractType string) string {
	switch contractType {
	case model.ContractJeonse:
		return "전세 보증금이 얼마인가요? (만원 단위)"
	case model.ContractWolse:
		return "보증금과 월세를 알려주세요. (만원 단위)"
	default:
		return "매매가가 얼마인가요? (만원 단위)"
	}
}

// SetPrice 는 가격 입력 단계를 처리하고 등기부 선택 단계로 전진한다.
// 필수 금액은 계약 유형에 따라 달라진다.
func (s *caseService) SetPrice(ctx context.Context, id string, input PriceInput) (*model.AnalysisCase, error) {
	c, err := s.requireState(id, model.StatePriceInput)
	if err != nil {
		return nil, err
	}

	switch c.ContractType {
	case model.ContractJeonse:
		if input.Deposit <= 0 {
			return nil, fmt.Errorf("%w: 전세 계약은 보증금이 필요합니다", ErrInvalidInput)
		}
	case model.ContractWolse:
		if input.Deposit <= 0 || input.MonthlyRent <= 0 {
			return nil, fmt.Errorf("%w: 월세 계약은 보증금과 월세가 필요합니다", ErrInvalidInput)
		}
	case model.ContractMaemae:
		if input.SalePrice <= 0 {
			return nil, fmt.Errorf("%w: 매매 계약은 매매가가 필요합니다", ErrInvalidInput)
		}
	}

	c.Deposit = input.Deposit
	c.MonthlyRent = input.MonthlyRent
	c.SalePrice = input.SalePrice
	c.State = model.NextState(c.State)
	if err := s.caseRepo.Update(c); err != nil {
		return nil, err
	}

	s.appendUser(ctx, c.ID, formatPrice(c))
	s.appendAssistant(ctx, c.ID,
		"등기부등본을 직접 올리시겠어요? 건너뛰면 등기부 없이 제한된 분석만 진행됩니다.",
		"registry_choice", nil)
	return c, nil
}

// formatPrice 는 채팅 이력에 남길 금액 요약 문자열을 만든다.
func formatPrice(c *model.AnalysisCase) string {
	switch c.ContractType {
	case model.ContractJeonse:
		return fmt.Sprintf("보증금 %s만원", formatComma(c.Deposit))
	case model.ContractWolse:
		return fmt.Sprintf("보증금 %s만원 / 월세 %s만원", formatComma(c.Deposit), formatComma(c.MonthlyRent))
	default:
		return fmt.Sprintf("매매가 %s만원", formatComma(c.SalePrice))
	}
}

// ChooseRegistry 는 등기부 선택 단계를 처리하고 분석 단계로 전진시킨 뒤
// 분석 작업을 큐에 넣는다.
func (s *caseService) ChooseRegistry(ctx context.Context, id, method string, fileID uint) (*model.AnalysisCase, error) {
	if method != "upload" && method != "skip" {
		return nil, fmt.Errorf("%w: method 는 upload 또는 skip 이어야 합니다", ErrInvalidInput)
	}

	c, err := s.requireState(id, model.StateRegistryChoice)
	if err != nil {
		return nil, err
	}

	if method == "upload" {
		if fileID == 0 {
			return nil, fmt.Errorf("%w: 업로드 방식은 파일 ID 가 필요합니다", ErrInvalidInput)
		}
		if _, err := s.registryFileRepo.FindByID(fileID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: 업로드된 등기부 파일을 찾을 수 없습니다", ErrInvalidInput)
			}
			return nil, err
		}
	}

	c.RegistryMethod = method
	c.RegistryFileID = fileID
	c.State = model.NextState(c.State)
	if err := s.caseRepo.Update(c); err != nil {
		return nil, err
	}

	task := tasks.AnalysisTask{
		CaseID:         c.ID,
		RegistryMethod: method,
		RegistryFileID: fileID,
	}
	if err := s.enqueue(task); err != nil {
		// 큐 투입 실패는 이 단계의 실패다. 케이스를 error 로 보낸다.
		log.Errorf("[CaseService] 분석 작업 큐 투입 실패: caseId=%s, error: %v", c.ID, err)
		_ = s.FailCase(ctx, c.ID, "분석 작업을 시작하지 못했습니다")
		return nil, fmt.Errorf("분석 작업 큐 투입 실패: %w", err)
	}

	s.appendAssistant(ctx, c.ID, "분석을 시작할게요. 잠시만 기다려 주세요.", "analysis_progress", nil)
	return c, nil
}

// GetReport 는 완료된 케이스의 마크다운 리포트를 반환한다.
func (s *caseService) GetReport(id string) (string, error) {
	c, err := s.GetCase(id)
	if err != nil {
		return "", err
	}
	if c.State != model.StateReport {
		return "", ErrReportNotReady
	}
	return c.ReportMarkdown, nil
}

// FailCase 는 케이스를 error 상태로 보낸다. 어느 단계에서든 호출될 수 있다.
func (s *caseService) FailCase(ctx context.Context, id, message string) error {
	c, err := s.GetCase(id)
	if err != nil {
		return err
	}
	c.State = model.StateError
	c.ErrorMessage = message
	if err := s.caseRepo.Update(c); err != nil {
		return err
	}
	s.appendAssistant(ctx, id,
		"분석 중 문제가 발생했습니다: "+message+" 처음부터 다시 시도해 주세요.", "", nil)
	return nil
}

// CompleteCase 는 생성된 리포트를 저장하고 케이스를 report 상태로 보낸다.
func (s *caseService) CompleteCase(ctx context.Context, id, reportMarkdown string) error {
	c, err := s.requireState(id, model.StateParseEnrich)
	if err != nil {
		return err
	}
	c.ReportMarkdown = reportMarkdown
	c.State = model.StateReport
	if err := s.caseRepo.Update(c); err != nil {
		return err
	}
	s.appendAssistant(ctx, id, "분석이 끝났습니다. 리포트를 확인해 보세요.", "report_view", nil)
	return nil
}

// GetMessages 는 케이스 세션의 대화 이력을 반환한다.
func (s *caseService) GetMessages(ctx context.Context, id string) ([]model.ChatMessage, error) {
	if _, err := s.GetCase(id); err != nil {
		return nil, err
	}
	return s.chatRepo.GetMessages(ctx, id)
}

// requireState 는 케이스를 조회하고 기대 상태인지 확인한다.
func (s *caseService) requireState(id, expected string) (*model.AnalysisCase, error) {
	c, err := s.GetCase(id)
	if err != nil {
		return nil, err
	}
	if c.State != expected {
		return nil, fmt.Errorf("%w: 현재 상태 %s, 기대 상태 %s", ErrWrongState, c.State, expected)
	}
	return c, nil
}

// appendUser / appendAssistant 는 채팅 이력 저장 실패를 치명적으로 다루지 않는다.
func (s *caseService) appendUser(ctx context.Context, caseID, content string) {
	msg := model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := s.chatRepo.AppendMessages(ctx, caseID, msg); err != nil {
		log.Warnf("[CaseService] 사용자 메시지 저장 실패: caseId=%s, error: %v", caseID, err)
	}
}

func (s *caseService) appendAssistant(ctx context.Context, caseID, content, componentType string, componentData json.RawMessage) {
	msg := model.ChatMessage{
		ID:            uuid.NewString(),
		Role:          "assistant",
		Content:       content,
		ComponentType: componentType,
		ComponentData: componentData,
		Timestamp:     time.Now(),
	}
	if err := s.chatRepo.AppendMessages(ctx, caseID, msg); err != nil {
		log.Warnf("[CaseService] 어시스턴트 메시지 저장 실패: caseId=%s, error: %v", caseID, err)
	}
}
