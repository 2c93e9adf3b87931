// Package service 는 애플리케이션의 비즈니스 로직 계층을 담는다.
package service

import (
	"context"
	"strconv"
	"strings"

	"zipcheck-go/internal/model"
	"zipcheck-go/pkg/juso"
)

// AddressSearchResult 는 주소 검색 프록시의 정규화된 결과다.
type AddressSearchResult struct {
	Items      []model.AddressResult `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Page       int                   `json:"page"`
	Size       int                   `json:"size"`
}

// AddressService 인터페이스는 주소 검색 관련 비즈니스 작업을 정의한다.
type AddressService interface {
	Search(ctx context.Context, keyword string, page, size int) (*AddressSearchResult, error)
	SearchLegalDong(ctx context.Context, keyword string) ([]model.LegalDongResult, error)
}

type addressService struct {
	jusoClient juso.Client
}

// NewAddressService 는 새 AddressService 인스턴스를 생성한다.
func NewAddressService(jusoClient juso.Client) AddressService {
	return &addressService{jusoClient: jusoClient}
}

// Search 는 juso API 결과를 균일한 형태로 정규화한다.
// 정부 API 는 필드가 종종 비어서 내려오므로 누락 값은 빈 문자열로 남긴다.
func (s *addressService) Search(ctx context.Context, keyword string, page, size int) (*AddressSearchResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}

	resp, err := s.jusoClient.Search(ctx, keyword, page, size)
	if err != nil {
		return nil, err
	}

	items := make([]model.AddressResult, 0, len(resp.Results.Juso))
	for _, j := range resp.Results.Juso {
		items = append(items, model.AddressResult{
			RoadAddr:     j.RoadAddr,
			JibunAddr:    j.JibunAddr,
			ZipNo:        j.ZipNo,
			BuildingName: j.BdNm,
			AdmCd:        j.AdmCd,
			LawdCd:       lawdCdFromAdmCd(j.AdmCd),
			SiNm:         j.SiNm,
			SggNm:        j.SggNm,
			EmdNm:        j.EmdNm,
		})
	}

	// totalCount 는 문자열로 내려온다
	total, err := strconv.Atoi(resp.Results.Common.TotalCount)
	if err != nil {
		total = len(items)
	}

	return &AddressSearchResult{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Size:       size,
	}, nil
}

// SearchLegalDong 은 키워드에 해당하는 법정동 코드 목록을 반환한다.
// 주소 검색과 같은 원천을 쓰되 행정구역코드를 동 단위로 중복 제거한다.
func (s *addressService) SearchLegalDong(ctx context.Context, keyword string) ([]model.LegalDongResult, error) {
	resp, err := s.jusoClient.Search(ctx, keyword, 1, 50)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	results := make([]model.LegalDongResult, 0)
	for _, j := range resp.Results.Juso {
		if j.AdmCd == "" {
			continue
		}
		if _, ok := seen[j.AdmCd]; ok {
			continue
		}
		seen[j.AdmCd] = struct{}{}

		name := strings.TrimSpace(strings.Join([]string{j.SiNm, j.SggNm, j.EmdNm}, " "))
		results = append(results, model.LegalDongResult{
			Code:   j.AdmCd,
			LawdCd: lawdCdFromAdmCd(j.AdmCd),
			Name:   name,
		})
	}
	return results, nil
}

// lawdCdFromAdmCd 는 10자리 행정구역코드에서 실거래가 조회용 앞 5자리를 뽑는다.
func lawdCdFromAdmCd(admCd string) string {
	if len(admCd) < 5 {
		return ""
	}
	return admCd[:5]
}
