// Package pipeline 은 등기부 분석의 핵심 처리 흐름을 정의한다.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/repository"
	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/metrics"
	"zipcheck-go/pkg/registry"
	"zipcheck-go/pkg/tasks"
)

// 파이프라인 단계 이름. ProgressEvent.Step 으로 그대로 나간다.
const (
	StepRegistryParse    = "registry_parse"
	StepRegistryValidate = "registry_validate"
	StepTradeEnrich      = "trade_enrich"
	StepRiskEvaluate     = "risk_evaluate"
	StepReportRender     = "report_render"
)

// Processor 는 분석 파이프라인의 의존성과 로직을 묶는다.
type Processor struct {
	caseService    service.CaseService
	uploadService  service.UploadService
	tradeService   service.TradeService
	reportService  service.ReportService
	registryClient registry.Client
	chatRepo       repository.ChatRepository
}

// NewProcessor 는 새 Processor 인스턴스를 생성한다.
func NewProcessor(
	caseService service.CaseService,
	uploadService service.UploadService,
	tradeService service.TradeService,
	reportService service.ReportService,
	registryClient registry.Client,
	chatRepo repository.ChatRepository,
) *Processor {
	return &Processor{
		caseService:    caseService,
		uploadService:  uploadService,
		tradeService:   tradeService,
		reportService:  reportService,
		registryClient: registryClient,
		chatRepo:       chatRepo,
	}
}

// Process 는 분석 작업의 메인 함수다. 다섯 단계를 순서대로 실행하고
// 단계별 진행 이벤트를 발행한다. 실패하면 케이스를 error 상태로 보낸다.
func (p *Processor) Process(ctx context.Context, task tasks.AnalysisTask) error {
	log.Infof("[Processor] 분석 시작: caseId=%s method=%s", task.CaseID, task.RegistryMethod)

	c, err := p.caseService.GetCase(task.CaseID)
	if err != nil {
		return fmt.Errorf("케이스 조회 실패: %w", err)
	}
	if c.State != model.StateParseEnrich {
		// 중복 전달된 메시지는 조용히 버린다.
		log.Warnf("[Processor] 분석 대상 상태가 아님, 건너뜀: caseId=%s state=%s", task.CaseID, c.State)
		return nil
	}

	// 1. 등기부 파싱
	var doc *registry.Document
	if task.RegistryMethod == "upload" {
		doc, err = p.parseRegistry(ctx, c, task.RegistryFileID)
		if err != nil {
			return p.fail(ctx, c.ID, StepRegistryParse, err)
		}
	} else {
		p.publish(ctx, c.ID, StepRegistryParse, "done", "등기부 없이 진행합니다")
		metrics.AnalysisStepsTotal.WithLabelValues(StepRegistryParse, "skipped").Inc()
	}

	// 2. 등기부 검증
	if doc != nil {
		if err := p.validateRegistry(ctx, c, doc); err != nil {
			return p.fail(ctx, c.ID, StepRegistryValidate, err)
		}
	}

	// 3. 실거래가 보강. 실패해도 치명적이지 않아 시세 없이 계속 간다.
	market := p.enrichTrades(ctx, c)

	// 4. 위험 평가
	p.publish(ctx, c.ID, StepRiskEvaluate, "started", "")
	flags := p.reportService.EvaluateRisk(c, doc, market)
	p.publish(ctx, c.ID, StepRiskEvaluate, "done", fmt.Sprintf("위험 항목 %d건 발견", len(flags)))
	metrics.AnalysisStepsTotal.WithLabelValues(StepRiskEvaluate, "success").Inc()

	// 5. 리포트 생성
	p.publish(ctx, c.ID, StepReportRender, "started", "")
	markdown := p.reportService.RenderMarkdown(c, doc, market, flags)
	if err := p.caseService.CompleteCase(ctx, c.ID, markdown); err != nil {
		return p.fail(ctx, c.ID, StepReportRender, fmt.Errorf("리포트 저장 실패: %w", err))
	}
	metrics.AnalysisStepsTotal.WithLabelValues(StepReportRender, "success").Inc()
	p.publish(ctx, c.ID, StepReportRender, "report", "리포트가 준비되었습니다")

	log.Infof("[Processor] 분석 완료: caseId=%s flags=%d", c.ID, len(flags))
	return nil
}

// RunStep 은 단일 단계를 동기로 실행한다. 개발 모드의 수동 QA 용도라
// 상태 전이와 실패 처리를 하지 않고 결과만 돌려준다.
func (p *Processor) RunStep(ctx context.Context, caseID, step string) (interface{}, error) {
	c, err := p.caseService.GetCase(caseID)
	if err != nil {
		return nil, err
	}

	switch step {
	case StepRegistryParse:
		if c.RegistryMethod != "upload" {
			return nil, fmt.Errorf("등기부 업로드 케이스가 아닙니다")
		}
		return p.parseRegistry(ctx, c, c.RegistryFileID)
	case StepRegistryValidate:
		if c.RegistryMethod != "upload" {
			return nil, fmt.Errorf("등기부 업로드 케이스가 아닙니다")
		}
		doc, err := p.parseRegistry(ctx, c, c.RegistryFileID)
		if err != nil {
			return nil, err
		}
		return doc, p.validateRegistry(ctx, c, doc)
	case StepTradeEnrich:
		return p.enrichTrades(ctx, c), nil
	case StepRiskEvaluate:
		market := p.enrichTrades(ctx, c)
		return p.reportService.EvaluateRisk(c, nil, market), nil
	case StepReportRender:
		market := p.enrichTrades(ctx, c)
		flags := p.reportService.EvaluateRisk(c, nil, market)
		return p.reportService.RenderMarkdown(c, nil, market, flags), nil
	default:
		return nil, fmt.Errorf("알 수 없는 단계: %s", step)
	}
}

// parseRegistry 는 MinIO 에서 PDF 를 받아 외부 파서로 보낸다.
func (p *Processor) parseRegistry(ctx context.Context, c *model.AnalysisCase, fileID uint) (*registry.Document, error) {
	p.publish(ctx, c.ID, StepRegistryParse, "started", "")

	pdf, fileName, err := p.uploadService.FetchRegistry(ctx, fileID)
	if err != nil {
		metrics.AnalysisStepsTotal.WithLabelValues(StepRegistryParse, "failure").Inc()
		return nil, fmt.Errorf("등기부 파일 로드 실패: %w", err)
	}

	doc, err := p.registryClient.ParseDocument(ctx, pdf, fileName)
	if err != nil {
		metrics.AnalysisStepsTotal.WithLabelValues(StepRegistryParse, "failure").Inc()
		return nil, fmt.Errorf("등기부 파싱 실패: %w", err)
	}

	metrics.AnalysisStepsTotal.WithLabelValues(StepRegistryParse, "success").Inc()
	p.publish(ctx, c.ID, StepRegistryParse, "done", "등기부등본을 읽었습니다")
	return doc, nil
}

// validateRegistry 는 파싱 결과의 스키마와 기본 정합성을 확인한다.
func (p *Processor) validateRegistry(ctx context.Context, c *model.AnalysisCase, doc *registry.Document) error {
	p.publish(ctx, c.ID, StepRegistryValidate, "started", "")

	if err := registry.ValidateDocument(doc); err != nil {
		metrics.AnalysisStepsTotal.WithLabelValues(StepRegistryValidate, "failure").Inc()
		return err
	}
	if len(doc.Owners) == 0 {
		metrics.AnalysisStepsTotal.WithLabelValues(StepRegistryValidate, "failure").Inc()
		return fmt.Errorf("등기부에 소유자 정보가 없습니다")
	}
	if doc.IssuedAt != "" {
		if issued, err := time.Parse("2006-01-02", doc.IssuedAt); err == nil {
			if time.Since(issued) > 90*24*time.Hour {
				log.Warnf("[Processor] 발급 90일 초과 등기부: caseId=%s issuedAt=%s", c.ID, doc.IssuedAt)
			}
		}
	}

	metrics.AnalysisStepsTotal.WithLabelValues(StepRegistryValidate, "success").Inc()
	p.publish(ctx, c.ID, StepRegistryValidate, "done", "등기부 내용을 확인했습니다")
	return nil
}

// enrichTrades 는 최근 6개월 실거래를 조회해 시세 요약을 만든다.
// 법정동코드가 없거나 조회가 실패하면 nil 을 반환한다.
func (p *Processor) enrichTrades(ctx context.Context, c *model.AnalysisCase) *model.MarketSummary {
	p.publish(ctx, c.ID, StepTradeEnrich, "started", "")

	if c.LawdCd == "" {
		metrics.AnalysisStepsTotal.WithLabelValues(StepTradeEnrich, "skipped").Inc()
		p.publish(ctx, c.ID, StepTradeEnrich, "done", "법정동코드가 없어 시세 조회를 건너뜁니다")
		return nil
	}

	filter := service.TradeFilter{AptName: c.BuildingName, Dong: c.Dong}
	var all []model.TradeRecord
	now := time.Now()
	for i := 0; i < 6; i++ {
		dealYmd := now.AddDate(0, -i, 0).Format("200601")
		records, _, err := p.tradeService.GetAptTrades(ctx, c.LawdCd, dealYmd, filter)
		if err != nil {
			log.Warnf("[Processor] 실거래 조회 실패: caseId=%s dealYmd=%s error: %v", c.ID, dealYmd, err)
			continue
		}
		all = append(all, records...)
	}

	if len(all) == 0 {
		metrics.AnalysisStepsTotal.WithLabelValues(StepTradeEnrich, "success").Inc()
		p.publish(ctx, c.ID, StepTradeEnrich, "done", "최근 실거래 내역이 없습니다")
		return &model.MarketSummary{TradeCount: 0}
	}

	// 가장 최근 거래를 대표 시세로 쓴다.
	latest := all[0]
	for _, r := range all {
		if r.DealDate > latest.DealDate {
			latest = r
		}
	}

	metrics.AnalysisStepsTotal.WithLabelValues(StepTradeEnrich, "success").Inc()
	p.publish(ctx, c.ID, StepTradeEnrich, "done", fmt.Sprintf("최근 실거래 %d건을 찾았습니다", len(all)))
	return &model.MarketSummary{
		SamplePrice: latest.DealAmount,
		SampleArea:  latest.Area,
		SampleDate:  latest.DealDate,
		TradeCount:  len(all),
	}
}

// fail 은 단계 실패를 기록하고 케이스를 error 상태로 보낸다.
// 반환 에러는 컨슈머의 재시도 판단에 쓰인다.
func (p *Processor) fail(ctx context.Context, caseID, step string, cause error) error {
	log.Errorf("[Processor] 단계 실패: caseId=%s step=%s error: %v", caseID, step, cause)
	metrics.AnalysisStepsTotal.WithLabelValues(step, "failure").Inc()

	if err := p.caseService.FailCase(ctx, caseID, cause.Error()); err != nil {
		log.Errorf("[Processor] 케이스 실패 처리 중 오류: caseId=%s error: %v", caseID, err)
	}
	p.publish(ctx, caseID, step, "error", cause.Error())
	return cause
}

// publish 진행 이벤트 발행. 실패는 로그만 남긴다.
func (p *Processor) publish(ctx context.Context, caseID, step, status, message string) {
	event := model.ProgressEvent{CaseID: caseID, Step: step, Status: status, Message: message}
	if err := p.chatRepo.PublishProgress(ctx, event); err != nil {
		log.Warnf("[Processor] 진행 이벤트 발행 실패: caseId=%s step=%s error: %v", caseID, step, err)
	}
}
