package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipcheck-go/internal/config"
	"zipcheck-go/pkg/juso"
)

// jusoFixture 는 juso API 형태의 응답 본문을 만든다. 오류도 HTTP 200 으로 내려온다.
func jusoFixture(errorCode, errorMessage, totalCount string, addrs []map[string]string) string {
	body := map[string]interface{}{
		"results": map[string]interface{}{
			"common": map[string]string{
				"errorCode":    errorCode,
				"errorMessage": errorMessage,
				"totalCount":   totalCount,
			},
			"juso": addrs,
		},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func newTestAddressService(t *testing.T, handler http.HandlerFunc) AddressService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := juso.NewClient(config.JusoConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})
	return NewAddressService(client)
}

func TestAddressSearchNormalizesResults(t *testing.T) {
	var gotKeyword, gotPage string
	svc := newTestAddressService(t, func(w http.ResponseWriter, r *http.Request) {
		gotKeyword = r.URL.Query().Get("keyword")
		gotPage = r.URL.Query().Get("currentPage")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, jusoFixture("0", "정상", "2", []map[string]string{
			{
				"roadAddr":  "서울특별시 강남구 테헤란로 123",
				"jibunAddr": "서울특별시 강남구 역삼동 737",
				"zipNo":     "06158",
				"bdNm":      "래미안타워",
				"admCd":     "1168010100",
				"siNm":      "서울특별시",
				"sggNm":     "강남구",
				"emdNm":     "역삼동",
			},
			{
				"roadAddr": "서울특별시 강남구 테헤란로 125",
				"admCd":    "1168010100",
			},
		}))
	})

	result, err := svc.Search(context.Background(), "테헤란로 123", 1, 10)
	require.NoError(t, err)

	assert.Equal(t, "테헤란로 123", gotKeyword)
	assert.Equal(t, "1", gotPage)
	assert.Equal(t, 2, result.TotalCount)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	assert.Equal(t, "서울특별시 강남구 테헤란로 123", first.RoadAddr)
	assert.Equal(t, "래미안타워", first.BuildingName)
	assert.Equal(t, "1168010100", first.AdmCd)
	assert.Equal(t, "11680", first.LawdCd, "법정동 코드는 행정구역코드 앞 5자리")

	// 누락 필드는 빈 문자열로 남는다
	assert.Equal(t, "", result.Items[1].BuildingName)
	assert.Equal(t, "11680", result.Items[1].LawdCd)
}

func TestAddressSearchClampsPaging(t *testing.T) {
	var gotPage, gotSize string
	svc := newTestAddressService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("currentPage")
		gotSize = r.URL.Query().Get("countPerPage")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, jusoFixture("0", "정상", "0", nil))
	})

	_, err := svc.Search(context.Background(), "역삼동", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, "1", gotPage)
	assert.Equal(t, "10", gotSize)
}

func TestAddressSearchUpstreamErrorCode(t *testing.T) {
	// juso 는 오류도 HTTP 200 + errorCode 로 내려준다
	svc := newTestAddressService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, jusoFixture("E0005", "승인되지 않은 KEY 입니다.", "0", nil))
	})

	_, err := svc.Search(context.Background(), "역삼동", 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E0005")
}

func TestAddressSearchBadTotalCountFallsBack(t *testing.T) {
	svc := newTestAddressService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, jusoFixture("0", "정상", "", []map[string]string{
			{"roadAddr": "서울특별시 강남구 테헤란로 123", "admCd": "1168010100"},
		}))
	})

	result, err := svc.Search(context.Background(), "테헤란로", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount, "totalCount 파싱 실패 시 항목 수로 대체")
}

func TestSearchLegalDongDeduplicates(t *testing.T) {
	svc := newTestAddressService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, jusoFixture("0", "정상", "3", []map[string]string{
			{"admCd": "1168010100", "siNm": "서울특별시", "sggNm": "강남구", "emdNm": "역삼동"},
			{"admCd": "1168010100", "siNm": "서울특별시", "sggNm": "강남구", "emdNm": "역삼동"},
			{"admCd": "1168011800", "siNm": "서울특별시", "sggNm": "강남구", "emdNm": "도곡동"},
			{"admCd": ""},
		}))
	})

	results, err := svc.SearchLegalDong(context.Background(), "강남구")
	require.NoError(t, err)
	require.Len(t, results, 2, "같은 행정구역코드는 한 번만, 코드 없는 행은 제외")

	assert.Equal(t, "1168010100", results[0].Code)
	assert.Equal(t, "11680", results[0].LawdCd)
	assert.Equal(t, "서울특별시 강남구 역삼동", results[0].Name)
	assert.Equal(t, "1168011800", results[1].Code)
}
