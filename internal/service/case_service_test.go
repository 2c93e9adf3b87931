package service

import (
	"context"
	"errors"
	"testing"

	"zipcheck-go/internal/model"
	"zipcheck-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeCaseRepo 메모리 기반 CaseRepository
type fakeCaseRepo struct {
	cases map[string]*model.AnalysisCase
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: make(map[string]*model.AnalysisCase)}
}

func (r *fakeCaseRepo) Create(c *model.AnalysisCase) error {
	cp := *c
	r.cases[c.ID] = &cp
	return nil
}

func (r *fakeCaseRepo) FindByID(id string) (*model.AnalysisCase, error) {
	c, ok := r.cases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCaseRepo) Update(c *model.AnalysisCase) error {
	if _, ok := r.cases[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	r.cases[c.ID] = &cp
	return nil
}

func (r *fakeCaseRepo) FindWithPagination(state string, offset, limit int) ([]model.AnalysisCase, int64, error) {
	return nil, 0, nil
}
func (r *fakeCaseRepo) CountAll() (int64, error)                { return int64(len(r.cases)), nil }
func (r *fakeCaseRepo) CountByState() (map[string]int64, error) { return nil, nil }
func (r *fakeCaseRepo) CountCompleted() (int64, error)          { return 0, nil }

// fakeRegistryFileRepo 메모리 기반 RegistryFileRepository
type fakeRegistryFileRepo struct {
	files map[uint]*model.RegistryFile
}

func (r *fakeRegistryFileRepo) Create(f *model.RegistryFile) error {
	if r.files == nil {
		r.files = make(map[uint]*model.RegistryFile)
	}
	f.ID = uint(len(r.files) + 1)
	r.files[f.ID] = f
	return nil
}

func (r *fakeRegistryFileRepo) FindByID(id uint) (*model.RegistryFile, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

// fakeChatRepo 메모리 기반 ChatRepository
type fakeChatRepo struct {
	messages map[string][]model.ChatMessage
	events   []model.ProgressEvent
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{messages: make(map[string][]model.ChatMessage)}
}

func (r *fakeChatRepo) GetMessages(ctx context.Context, caseID string) ([]model.ChatMessage, error) {
	return r.messages[caseID], nil
}

func (r *fakeChatRepo) AppendMessages(ctx context.Context, caseID string, msgs ...model.ChatMessage) error {
	r.messages[caseID] = append(r.messages[caseID], msgs...)
	return nil
}

func (r *fakeChatRepo) PublishProgress(ctx context.Context, event model.ProgressEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeChatRepo) SubscribeProgress(ctx context.Context, caseID string) (<-chan model.ProgressEvent, func(), error) {
	ch := make(chan model.ProgressEvent)
	close(ch)
	return ch, func() {}, nil
}

func newTestCaseService(enqueue EnqueueAnalysis) (CaseService, *fakeCaseRepo, *fakeRegistryFileRepo, *fakeChatRepo) {
	caseRepo := newFakeCaseRepo()
	fileRepo := &fakeRegistryFileRepo{}
	chatRepo := newFakeChatRepo()
	if enqueue == nil {
		enqueue = func(task tasks.AnalysisTask) error { return nil }
	}
	return NewCaseService(caseRepo, fileRepo, chatRepo, enqueue), caseRepo, fileRepo, chatRepo
}

func TestCaseWizardLinearFlow(t *testing.T) {
	svc, _, fileRepo, chatRepo := newTestCaseService(nil)
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	assert.Equal(t, model.StateAddressPick, c.State)

	c, err = svc.SetAddress(ctx, c.ID, AddressInput{
		RoadAddr: "서울특별시 강남구 테헤란로 123",
		AdmCd:    "1168010100",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StateContractType, c.State)
	assert.Equal(t, "11680", c.LawdCd, "법정동코드는 행정구역코드 앞 5자리에서 유도된다")

	c, err = svc.SetContractType(ctx, c.ID, model.ContractJeonse)
	require.NoError(t, err)
	assert.Equal(t, model.StatePriceInput, c.State)

	c, err = svc.SetPrice(ctx, c.ID, PriceInput{Deposit: 30000})
	require.NoError(t, err)
	assert.Equal(t, model.StateRegistryChoice, c.State)

	file := &model.RegistryFile{FileName: "registry.pdf"}
	require.NoError(t, fileRepo.Create(file))

	c, err = svc.ChooseRegistry(ctx, c.ID, "upload", file.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateParseEnrich, c.State)

	require.NoError(t, svc.CompleteCase(ctx, c.ID, "# 리포트"))
	markdown, err := svc.GetReport(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "# 리포트", markdown)

	// 대화 이력에는 단계마다 어시스턴트 안내 메시지가 쌓인다
	messages, err := svc.GetMessages(ctx, c.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, messages)
	assert.Equal(t, "assistant", messages[0].Role)
	_ = chatRepo
}

func TestCaseWizardRejectsOutOfOrderStep(t *testing.T) {
	svc, _, _, _ := newTestCaseService(nil)
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, nil)
	require.NoError(t, err)

	// 주소 선택 단계에서 가격 입력을 시도
	_, err = svc.SetPrice(ctx, c.ID, PriceInput{Deposit: 10000})
	assert.ErrorIs(t, err, ErrWrongState)

	// 주소 선택 단계에서 계약 유형 입력을 시도
	_, err = svc.SetContractType(ctx, c.ID, model.ContractWolse)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestCaseWizardValidatesInputs(t *testing.T) {
	svc, _, _, _ := newTestCaseService(nil)
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, nil)
	require.NoError(t, err)
	_, err = svc.SetAddress(ctx, c.ID, AddressInput{RoadAddr: "서울특별시 마포구 월드컵로 1"})
	require.NoError(t, err)

	_, err = svc.SetContractType(ctx, c.ID, "반전세")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetContractType(ctx, c.ID, model.ContractWolse)
	require.NoError(t, err)

	// 월세 계약은 보증금과 월세 모두 필요
	_, err = svc.SetPrice(ctx, c.ID, PriceInput{Deposit: 1000})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetPrice(ctx, c.ID, PriceInput{Deposit: 1000, MonthlyRent: 60})
	require.NoError(t, err)

	// 등기부 선택 method 검증
	_, err = svc.ChooseRegistry(ctx, c.ID, "email", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// 업로드 방식인데 없는 파일
	_, err = svc.ChooseRegistry(ctx, c.ID, "upload", 99)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestChooseRegistryEnqueueFailureMovesCaseToError(t *testing.T) {
	enqueueErr := errors.New("kafka unavailable")
	svc, caseRepo, _, _ := newTestCaseService(func(task tasks.AnalysisTask) error { return enqueueErr })
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, nil)
	require.NoError(t, err)
	_, err = svc.SetAddress(ctx, c.ID, AddressInput{RoadAddr: "부산광역시 해운대구 센텀로 99"})
	require.NoError(t, err)
	_, err = svc.SetContractType(ctx, c.ID, model.ContractMaemae)
	require.NoError(t, err)
	_, err = svc.SetPrice(ctx, c.ID, PriceInput{SalePrice: 85000})
	require.NoError(t, err)

	_, err = svc.ChooseRegistry(ctx, c.ID, "skip", 0)
	require.Error(t, err)

	stored, err := caseRepo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateError, stored.State, "큐 투입 실패는 케이스를 error 로 보낸다")
	assert.NotEmpty(t, stored.ErrorMessage)
}

func TestFailCaseIsTerminal(t *testing.T) {
	svc, _, _, _ := newTestCaseService(nil)
	ctx := context.Background()

	c, err := svc.CreateCase(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, svc.FailCase(ctx, c.ID, "외부 파서 오류"))

	// error 상태에서는 어떤 단계도 진행되지 않는다
	_, err = svc.SetAddress(ctx, c.ID, AddressInput{RoadAddr: "어딘가"})
	assert.ErrorIs(t, err, ErrWrongState)

	_, err = svc.GetReport(c.ID)
	assert.ErrorIs(t, err, ErrReportNotReady)
}

func TestGetCaseNotFound(t *testing.T) {
	svc, _, _, _ := newTestCaseService(nil)

	_, err := svc.GetCase("no-such-case")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}
