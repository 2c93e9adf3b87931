package service

import (
	"fmt"
	"strings"

	"zipcheck-go/internal/model"
	"zipcheck-go/pkg/registry"
)

// 전세가율 경고 임계값 (%).
const (
	jeonseRatioHigh   = 80.0
	jeonseRatioMedium = 70.0
)

// ReportService 인터페이스는 위험 평가와 리포트 생성 작업을 정의한다.
type ReportService interface {
	EvaluateRisk(c *model.AnalysisCase, doc *registry.Document, market *model.MarketSummary) []model.RiskFlag
	RenderMarkdown(c *model.AnalysisCase, doc *registry.Document, market *model.MarketSummary, flags []model.RiskFlag) string
}

type reportService struct{}

// NewReportService 는 새 ReportService 인스턴스를 생성한다.
func NewReportService() ReportService {
	return &reportService{}
}

// EvaluateRisk 는 계약 조건과 등기부, 시세를 종합해 위험 항목을 뽑는다.
// doc 이 nil 이면 등기부 없이 진행한 케이스다.
func (s *reportService) EvaluateRisk(c *model.AnalysisCase, doc *registry.Document, market *model.MarketSummary) []model.RiskFlag {
	flags := make([]model.RiskFlag, 0)

	// 1. 등기부 미확인
	if doc == nil {
		flags = append(flags, model.RiskFlag{
			Code:     "no_registry",
			Severity: model.RiskMedium,
			Title:    "등기부등본 미확인",
			Detail:   "등기부등본 없이 분석했습니다. 계약 전 반드시 등기부를 직접 확인하세요.",
		})
	}

	// 2. 시세 기준가. 매매는 매매가, 임대차는 최근 거래가를 쓴다.
	basePrice := c.SalePrice
	if c.ContractType != model.ContractMaemae && market != nil {
		basePrice = market.SamplePrice
	}

	if market == nil || market.TradeCount == 0 {
		flags = append(flags, model.RiskFlag{
			Code:     "no_market_data",
			Severity: model.RiskMedium,
			Title:    "실거래 내역 없음",
			Detail:   "해당 단지의 최근 실거래 내역을 찾지 못해 시세 비교를 할 수 없습니다.",
		})
	}

	if doc != nil {
		// 3. 말소되지 않은 근저당 합계 (채권최고액은 원 단위라 만원으로 환산)
		var mortgageSum int64
		for _, m := range doc.Mortgages {
			if !m.Cancelled {
				mortgageSum += m.MaxClaim / 10000
			}
		}

		if mortgageSum > 0 && basePrice > 0 {
			ratio := float64(mortgageSum) / float64(basePrice) * 100
			severity := model.RiskLow
			if ratio >= 50 {
				severity = model.RiskHigh
			} else if ratio >= 30 {
				severity = model.RiskMedium
			}
			flags = append(flags, model.RiskFlag{
				Code:     "senior_lien",
				Severity: severity,
				Title:    "선순위 근저당 존재",
				Detail: fmt.Sprintf("말소되지 않은 근저당 채권최고액 합계가 %s만원으로 기준가의 %.1f%%입니다.",
					formatComma(mortgageSum), ratio),
			})
		}

		// 4. 압류/가압류
		for _, sz := range doc.Seizures {
			if sz.Cancelled {
				continue
			}
			flags = append(flags, model.RiskFlag{
				Code:     "active_seizure",
				Severity: model.RiskHigh,
				Title:    sz.Kind + " 기입 존재",
				Detail:   fmt.Sprintf("%s(채권자: %s)가 말소되지 않은 채 남아 있습니다.", sz.Kind, sz.Creditor),
			})
		}

		// 5. 공동소유
		if len(doc.Owners) > 1 {
			flags = append(flags, model.RiskFlag{
				Code:     "shared_ownership",
				Severity: model.RiskLow,
				Title:    "공동소유 물건",
				Detail:   fmt.Sprintf("소유자가 %d명입니다. 계약 시 소유자 전원의 동의가 필요합니다.", len(doc.Owners)),
			})
		}

		// 6. 전세가율: 보증금+선순위 근저당 대비 시세
		if c.ContractType == model.ContractJeonse && basePrice > 0 {
			ratio := float64(c.Deposit+mortgageSum) / float64(basePrice) * 100
			if ratio >= jeonseRatioHigh {
				flags = append(flags, model.RiskFlag{
					Code:     "jeonse_ratio_high",
					Severity: model.RiskHigh,
					Title:    "전세가율 위험",
					Detail:   fmt.Sprintf("보증금과 선순위 채권의 합이 시세의 %.1f%%입니다. 보증금을 돌려받지 못할 위험이 큽니다.", ratio),
				})
			} else if ratio >= jeonseRatioMedium {
				flags = append(flags, model.RiskFlag{
					Code:     "jeonse_ratio_medium",
					Severity: model.RiskMedium,
					Title:    "전세가율 주의",
					Detail:   fmt.Sprintf("보증금과 선순위 채권의 합이 시세의 %.1f%%입니다.", ratio),
				})
			}
		}
	}

	return flags
}

// RenderMarkdown 은 최종 위험 분석 리포트를 마크다운으로 만든다.
func (s *reportService) RenderMarkdown(c *model.AnalysisCase, doc *registry.Document, market *model.MarketSummary, flags []model.RiskFlag) string {
	var b strings.Builder

	b.WriteString("# 계약 위험 분석 리포트\n\n")
	b.WriteString(fmt.Sprintf("**대상 물건**: %s", c.RoadAddr))
	if c.BuildingName != "" {
		b.WriteString(" (" + c.BuildingName + ")")
	}
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("**계약 유형**: %s\n\n", c.ContractType))
	b.WriteString("**계약 조건**: " + formatPrice(c) + "\n\n")

	// 시세 요약
	b.WriteString("## 시세\n\n")
	if market != nil && market.TradeCount > 0 {
		b.WriteString(fmt.Sprintf("최근 유사 면적(%.1f㎡) 실거래가는 **%s만원**(%s)이며, 조회 기간 내 거래는 %d건입니다.\n\n",
			market.SampleArea, formatComma(market.SamplePrice), market.SampleDate, market.TradeCount))
	} else {
		b.WriteString("조회 기간 내 실거래 내역이 없습니다.\n\n")
	}

	// 등기부 요약
	b.WriteString("## 등기부 요약\n\n")
	if doc == nil {
		b.WriteString("등기부등본 없이 분석했습니다.\n\n")
	} else {
		activeMortgages := 0
		for _, m := range doc.Mortgages {
			if !m.Cancelled {
				activeMortgages++
			}
		}
		activeSeizures := 0
		for _, sz := range doc.Seizures {
			if !sz.Cancelled {
				activeSeizures++
			}
		}
		b.WriteString(fmt.Sprintf("- 소유자 %d명\n- 유효 근저당 %d건\n- 유효 압류/가압류 %d건\n\n",
			len(doc.Owners), activeMortgages, activeSeizures))
	}

	// 위험 항목
	b.WriteString("## 위험 항목\n\n")
	if len(flags) == 0 {
		b.WriteString("특이 위험 항목이 발견되지 않았습니다.\n")
	} else {
		for _, f := range flags {
			b.WriteString(fmt.Sprintf("### %s %s\n\n%s\n\n", severityBadge(f.Severity), f.Title, f.Detail))
		}
	}

	b.WriteString("\n---\n\n본 리포트는 공개 데이터 기반 참고 자료이며 법률 자문이 아닙니다.\n")
	return b.String()
}

// severityBadge 는 위험 등급별 이모지 배지다.
func severityBadge(severity string) string {
	switch severity {
	case model.RiskHigh:
		return "🔴"
	case model.RiskMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

// formatComma 는 정수를 천 단위 쉼표 문자열로 만든다.
func formatComma(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
