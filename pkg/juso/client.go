// Package juso 는 행정안전부 도로명주소 검색 API(juso.go.kr) 클라이언트를 제공한다.
package juso

import (
	"context"
	"fmt"
	"time"

	"zipcheck-go/internal/config"

	"github.com/go-resty/resty/v2"
)

// SearchResponse 는 juso API 원본 응답 구조다.
// 모든 값은 문자열로 내려오며, 누락 필드는 빈 문자열로 남는다.
type SearchResponse struct {
	Results struct {
		Common struct {
			ErrorCode    string `json:"errorCode"`
			ErrorMessage string `json:"errorMessage"`
			TotalCount   string `json:"totalCount"`
			CurrentPage  string `json:"currentPage"`
			CountPerPage string `json:"countPerPage"`
		} `json:"common"`
		Juso []Address `json:"juso"`
	} `json:"results"`
}

// Address 는 juso API 의 주소 한 건이다.
type Address struct {
	RoadAddr    string `json:"roadAddr"`    // 도로명주소 전체
	JibunAddr   string `json:"jibunAddr"`   // 지번주소
	ZipNo       string `json:"zipNo"`       // 우편번호
	BdNm        string `json:"bdNm"`        // 건물명
	AdmCd       string `json:"admCd"`       // 행정구역코드 (10자리)
	RnMgtSn     string `json:"rnMgtSn"`     // 도로명코드
	BdMgtSn     string `json:"bdMgtSn"`     // 건물관리번호
	SiNm        string `json:"siNm"`        // 시도명
	SggNm       string `json:"sggNm"`       // 시군구명
	EmdNm       string `json:"emdNm"`       // 읍면동명
	LnbrMnnm    string `json:"lnbrMnnm"`    // 지번 본번
	LnbrSlno    string `json:"lnbrSlno"`    // 지번 부번
	BuldMnnm    string `json:"buldMnnm"`    // 건물 본번
	BuldSlno    string `json:"buldSlno"`    // 건물 부번
	DetBdNmList string `json:"detBdNmList"` // 상세 건물명 목록
}

// Client 는 juso API 호출 인터페이스다.
type Client interface {
	Search(ctx context.Context, keyword string, page, size int) (*SearchResponse, error)
}

type client struct {
	httpClient *resty.Client
	apiKey     string
}

// NewClient 는 새 juso 클라이언트를 생성한다.
func NewClient(cfg config.JusoConfig) Client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "application/json")
	return &client{httpClient: c, apiKey: cfg.APIKey}
}

// Search 는 키워드로 도로명주소를 검색한다.
func (c *client) Search(ctx context.Context, keyword string, page, size int) (*SearchResponse, error) {
	var out SearchResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"confmKey":     c.apiKey,
			"keyword":      keyword,
			"currentPage":  fmt.Sprintf("%d", page),
			"countPerPage": fmt.Sprintf("%d", size),
			"resultType":   "json",
		}).
		SetResult(&out).
		Get("/addrLinkApi.do")
	if err != nil {
		return nil, fmt.Errorf("juso API 호출 실패: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("juso API 오류 응답 [%d]: %s", resp.StatusCode(), resp.String())
	}
	// juso 는 오류도 HTTP 200 으로 내려주므로 errorCode 를 확인한다
	if ec := out.Results.Common.ErrorCode; ec != "" && ec != "0" {
		return nil, fmt.Errorf("juso API 오류 [%s]: %s", ec, out.Results.Common.ErrorMessage)
	}
	return &out, nil
}
