package model

import (
	"encoding/json"
	"time"
)

// 분석 케이스의 워크플로 상태.
// 마법사는 아래 순서를 엄격히 따라 한 단계씩만 전진하며,
// 어느 단계에서든 실패하면 StateError 로 빠져 종료된다.
const (
	StateInit           = "init"
	StateAddressPick    = "address_pick"
	StateContractType   = "contract_type"
	StatePriceInput     = "price_input"
	StateRegistryChoice = "registry_choice"
	StateParseEnrich    = "parse_enrich"
	StateReport         = "report"
	StateError          = "error"
)

// WizardStates 는 정상 진행 순서다. 퍼널 집계도 이 순서를 쓴다.
var WizardStates = []string{
	StateInit,
	StateAddressPick,
	StateContractType,
	StatePriceInput,
	StateRegistryChoice,
	StateParseEnrich,
	StateReport,
}

// NextState 는 주어진 상태의 다음 상태를 반환한다. 마지막 상태거나
// 알 수 없는 상태면 빈 문자열을 반환한다.
func NextState(state string) string {
	for i, s := range WizardStates {
		if s == state && i+1 < len(WizardStates) {
			return WizardStates[i+1]
		}
	}
	return ""
}

// 계약 유형.
const (
	ContractJeonse = "전세"
	ContractWolse  = "월세"
	ContractMaemae = "매매"
)

// ValidContractType 은 지원하는 계약 유형인지 검사한다.
func ValidContractType(t string) bool {
	return t == ContractJeonse || t == ContractWolse || t == ContractMaemae
}

// AnalysisCase 는 'analysis_cases' 테이블과 대응된다.
// 채팅 마법사 한 회차가 케이스 한 건이다. 금액 단위는 모두 만원이다.
type AnalysisCase struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         *uint     `gorm:"index" json:"userId"` // 비로그인 사용자는 NULL
	State          string    `gorm:"type:varchar(20);not null;index" json:"state"`
	RoadAddr       string    `gorm:"type:varchar(255)" json:"roadAddr"`
	JibunAddr      string    `gorm:"type:varchar(255)" json:"jibunAddr"`
	ZipNo          string    `gorm:"type:varchar(10)" json:"zipNo"`
	BuildingName   string    `gorm:"type:varchar(100)" json:"buildingName"`
	AdmCd          string    `gorm:"type:varchar(10)" json:"admCd"` // 행정구역코드 10자리
	LawdCd         string    `gorm:"type:varchar(5)" json:"lawdCd"` // 법정동코드 앞 5자리
	Dong           string    `gorm:"type:varchar(30)" json:"dong"`  // 읍면동명
	ContractType   string    `gorm:"type:varchar(10)" json:"contractType"`
	Deposit        int64     `json:"deposit"`                                // 보증금 (전세/월세)
	MonthlyRent    int64     `json:"monthlyRent"`                            // 월세
	SalePrice      int64     `json:"salePrice"`                              // 매매가
	RegistryMethod string    `gorm:"type:varchar(10)" json:"registryMethod"` // upload / skip
	RegistryFileID uint      `json:"registryFileId"`
	ReportMarkdown string    `gorm:"type:mediumtext" json:"reportMarkdown"`
	ErrorMessage   string    `gorm:"type:varchar(500)" json:"errorMessage"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (AnalysisCase) TableName() string {
	return "analysis_cases"
}

// ChatMessage 는 Redis 에 보관되는 케이스 세션의 대화 메시지 한 건이다.
// ComponentType / ComponentData 는 메시지에 내장되는 입력 폼 지시자다
// (예: "address_form", "contract_type_picker").
type ChatMessage struct {
	ID            string          `json:"id"`
	Role          string          `json:"role"` // "user" 또는 "assistant"
	Content       string          `json:"content"`
	ComponentType string          `json:"componentType,omitempty"`
	ComponentData json.RawMessage `json:"componentData,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ProgressEvent 는 분석 파이프라인이 Redis 채널로 발행하는 진행 이벤트다.
// SSE 핸들러가 그대로 클라이언트에 중계한다.
type ProgressEvent struct {
	CaseID  string `json:"caseId"`
	Step    string `json:"step"`   // registry_parse / registry_validate / trade_enrich / risk_evaluate / report_render
	Status  string `json:"status"` // started / done / report / error
	Message string `json:"message,omitempty"`
}
