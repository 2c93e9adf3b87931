// Package registry 는 외부 등기부등본 파싱 서비스 클라이언트를 제공한다.
// 등기부 PDF 는 외부 서비스가 해석하고, 여기서는 구조화된 JSON 만 소비한다.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zipcheck-go/internal/config"

	"github.com/go-resty/resty/v2"
)

// Document 는 파싱이 끝난 등기부등본 한 건이다.
type Document struct {
	Address      string     `json:"address"`      // 표제부 소재지
	BuildingName string     `json:"buildingName"` // 건물명
	Owners       []Owner    `json:"owners"`       // 갑구 현재 소유자
	Mortgages    []Mortgage `json:"mortgages"`    // 을구 근저당권
	Seizures     []Seizure  `json:"seizures"`     // 갑구 압류/가압류
	IssuedAt     string     `json:"issuedAt"`     // 열람 일시 (YYYY-MM-DD)
}

// Owner 는 갑구의 소유자 한 명이다.
type Owner struct {
	Name  string `json:"name"`
	Share string `json:"share"` // 지분 표시 문자열 (예: "1/2")
}

// Mortgage 는 을구의 근저당권 설정 한 건이다.
type Mortgage struct {
	Mortgagee string `json:"mortgagee"` // 근저당권자
	MaxClaim  int64  `json:"maxClaim"`  // 채권최고액 (원)
	SetDate   string `json:"setDate"`   // 설정일 (YYYY-MM-DD)
	Cancelled bool   `json:"cancelled"` // 말소 여부
}

// Seizure 는 압류 또는 가압류 기입 한 건이다.
type Seizure struct {
	Kind      string `json:"kind"`      // "압류" 또는 "가압류"
	Creditor  string `json:"creditor"`  // 채권자
	EntryDate string `json:"entryDate"` // 기입일 (YYYY-MM-DD)
	Cancelled bool   `json:"cancelled"` // 말소 여부
}

// Client 는 등기부 파싱 서비스 호출 인터페이스다.
type Client interface {
	ParseDocument(ctx context.Context, pdf []byte, fileName string) (*Document, error)
}

type client struct {
	httpClient *resty.Client
}

// NewClient 는 새 파서 클라이언트를 생성한다.
func NewClient(cfg config.RegistryConfig) Client {
	c := resty.New().
		SetBaseURL(cfg.ParserURL).
		SetTimeout(60*time.Second). // 파싱은 페이지 수에 따라 오래 걸릴 수 있다
		SetHeader("Authorization", "Bearer "+cfg.APIKey)
	return &client{httpClient: c}
}

// ParseDocument 는 PDF 바이트를 파서 서비스에 전달하고 구조화된 등기부를 돌려받는다.
func (c *client) ParseDocument(ctx context.Context, pdf []byte, fileName string) (*Document, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", fileName, bytesReader(pdf)).
		Post("/v1/parse")
	if err != nil {
		return nil, fmt.Errorf("등기부 파서 호출 실패: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("등기부 파서 오류 응답 [%d]: %s", resp.StatusCode(), resp.String())
	}

	var doc Document
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("등기부 JSON 파싱 실패: %w", err)
	}
	return &doc, nil
}
