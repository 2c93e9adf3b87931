// Package molit 은 국토교통부 아파트 매매 실거래가 공개 API 클라이언트를 제공한다.
// 응답은 XML 이며 encoding/xml 로 디코딩한다.
package molit

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"zipcheck-go/internal/config"

	"github.com/go-resty/resty/v2"
)

// TradeResponse 는 실거래가 API 의 XML 응답 전체 구조다.
type TradeResponse struct {
	XMLName xml.Name `xml:"response"`
	Header  struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items struct {
			Item []TradeItem `xml:"item"`
		} `xml:"items"`
		NumOfRows  int `xml:"numOfRows"`
		PageNo     int `xml:"pageNo"`
		TotalCount int `xml:"totalCount"`
	} `xml:"body"`
}

// TradeItem 은 아파트 매매 실거래 한 건이다.
// DealAmount 는 "82,500" 처럼 쉼표가 섞인 만원 단위 문자열로 내려온다.
type TradeItem struct {
	DealAmount string  `xml:"dealAmount"` // 거래금액 (만원, 쉼표 포함)
	AptName    string  `xml:"aptNm"`      // 아파트명
	ExcluArea  float64 `xml:"excluUseAr"` // 전용면적 (㎡)
	Floor      int     `xml:"floor"`      // 층
	BuildYear  int     `xml:"buildYear"`  // 건축년도
	DealYear   int     `xml:"dealYear"`
	DealMonth  int     `xml:"dealMonth"`
	DealDay    int     `xml:"dealDay"`
	UmdName    string  `xml:"umdNm"` // 법정동명
	Jibun      string  `xml:"jibun"` // 지번
}

// Client 는 실거래가 API 호출 인터페이스다.
type Client interface {
	GetAptTrades(ctx context.Context, lawdCd, dealYmd string, pageNo, numOfRows int) (*TradeResponse, error)
}

type client struct {
	httpClient *resty.Client
	serviceKey string
	timeout    time.Duration
}

// NewClient 는 새 실거래가 클라이언트를 생성한다.
func NewClient(cfg config.MolitConfig) Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/xml")
	return &client{httpClient: c, serviceKey: cfg.ServiceKey, timeout: timeout}
}

// GetAptTrades 는 법정동코드(5자리)와 거래년월(YYYYMM)로 실거래 내역을 조회한다.
// 공공 API 가 간헐적으로 매우 느려지므로 고정 타임아웃으로 호출을 취소한다.
func (c *client) GetAptTrades(ctx context.Context, lawdCd, dealYmd string, pageNo, numOfRows int) (*TradeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"serviceKey": c.serviceKey,
			"LAWD_CD":    lawdCd,
			"DEAL_YMD":   dealYmd,
			"pageNo":     fmt.Sprintf("%d", pageNo),
			"numOfRows":  fmt.Sprintf("%d", numOfRows),
		}).
		Get("/getRTMSDataSvcAptTradeDev")
	if err != nil {
		return nil, fmt.Errorf("실거래가 API 호출 실패: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("실거래가 API 오류 응답 [%d]", resp.StatusCode())
	}

	var out TradeResponse
	if err := xml.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("실거래가 XML 파싱 실패: %w", err)
	}
	// 정상 코드는 "00". 나머지는 공공데이터포털 공통 오류다.
	if rc := out.Header.ResultCode; rc != "" && rc != "00" {
		return nil, fmt.Errorf("실거래가 API 오류 [%s]: %s", rc, out.Header.ResultMsg)
	}
	return &out, nil
}
