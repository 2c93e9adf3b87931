// Package tasks 는 Kafka 로 주고받는 비동기 작업 정의를 담는다.
package tasks

// AnalysisTask 는 케이스 한 건의 등기부 분석 작업이다.
type AnalysisTask struct {
	CaseID         string `json:"caseId"`
	RegistryMethod string `json:"registryMethod"` // "upload" 또는 "skip"
	RegistryFileID uint   `json:"registryFileId,omitempty"`
}

// CrawlTask 는 매물 수집 작업이다.
type CrawlTask struct {
	Source string `json:"source"` // 수집 대상 소스 식별자
	Region string `json:"region"` // 지역 키워드 (예: "강남구")
}
