package model

// 위험 등급.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// RiskFlag 는 리포트에 실리는 위험 항목 한 건이다.
type RiskFlag struct {
	Code     string `json:"code"`     // 예: "jeonse_ratio_high", "active_seizure"
	Severity string `json:"severity"` // low / medium / high
	Title    string `json:"title"`
	Detail   string `json:"detail"`
}

// MarketSummary 는 실거래 내역에서 뽑은 시세 요약이다. 금액 단위는 만원이다.
type MarketSummary struct {
	SamplePrice int64   `json:"samplePrice"` // 최근 유사 면적 거래가
	SampleArea  float64 `json:"sampleArea"`
	SampleDate  string  `json:"sampleDate"`
	TradeCount  int     `json:"tradeCount"` // 조회 기간 내 해당 단지 거래 수
}
