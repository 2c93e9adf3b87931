package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"zipcheck-go/internal/config"
	"zipcheck-go/pkg/molit"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTradeXML = `<?xml version="1.0" encoding="UTF-8"?>
<response>
  <header>
    <resultCode>00</resultCode>
    <resultMsg>NORMAL SERVICE.</resultMsg>
  </header>
  <body>
    <items>
      <item>
        <dealAmount>82,500</dealAmount>
        <aptNm>래미안타워</aptNm>
        <excluUseAr>84.92</excluUseAr>
        <floor>15</floor>
        <buildYear>2015</buildYear>
        <dealYear>2026</dealYear>
        <dealMonth>7</dealMonth>
        <dealDay>3</dealDay>
        <umdNm>역삼동</umdNm>
        <jibun>735</jibun>
      </item>
      <item>
        <dealAmount>45,000</dealAmount>
        <aptNm>한신아파트</aptNm>
        <excluUseAr>59.98</excluUseAr>
        <floor>7</floor>
        <buildYear>1998</buildYear>
        <dealYear>2026</dealYear>
        <dealMonth>7</dealMonth>
        <dealDay>15</dealDay>
        <umdNm>도곡동</umdNm>
        <jibun>112-3</jibun>
      </item>
    </items>
    <numOfRows>100</numOfRows>
    <pageNo>1</pageNo>
    <totalCount>2</totalCount>
  </body>
</response>`

func newTestTradeService(t *testing.T, upstream http.HandlerFunc) (TradeService, *httptest.Server, *miniredis.Miniredis) {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	molitClient := molit.NewClient(config.MolitConfig{
		BaseURL:        server.URL,
		ServiceKey:     "test-key",
		TimeoutSeconds: 5,
	})
	return NewTradeService(molitClient, rdb), server, mr
}

func TestGetAptTradesValidatesParams(t *testing.T) {
	svc, _, _ := newTestTradeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleTradeXML))
	})

	tests := []struct {
		name    string
		lawdCd  string
		dealYmd string
	}{
		{"lawdCd 자릿수 부족", "1168", "202607"},
		{"lawdCd 숫자 아님", "1168a", "202607"},
		{"dealYmd 자릿수 초과", "11680", "2026071"},
		{"dealYmd 숫자 아님", "11680", "2026-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.GetAptTrades(context.Background(), tt.lawdCd, tt.dealYmd, TradeFilter{})
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestGetAptTradesNormalizesAmounts(t *testing.T) {
	svc, _, _ := newTestTradeService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "11680", r.URL.Query().Get("LAWD_CD"))
		assert.Equal(t, "202607", r.URL.Query().Get("DEAL_YMD"))
		w.Write([]byte(sampleTradeXML))
	})

	records, total, err := svc.GetAptTrades(context.Background(), "11680", "202607", TradeFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	assert.Equal(t, int64(82500), records[0].DealAmount, "쉼표 섞인 금액이 정수 만원으로 정규화된다")
	assert.Equal(t, "래미안타워", records[0].AptName)
	assert.Equal(t, "2026-07-03", records[0].DealDate)
	assert.Equal(t, "역삼동", records[0].Dong)
}

func TestGetAptTradesFilters(t *testing.T) {
	svc, _, _ := newTestTradeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleTradeXML))
	})
	ctx := context.Background()

	// 아파트명 부분 일치
	records, _, err := svc.GetAptTrades(ctx, "11680", "202607", TradeFilter{AptName: "래미안"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "래미안타워", records[0].AptName)

	// 법정동 정확 일치
	records, _, err = svc.GetAptTrades(ctx, "11680", "202607", TradeFilter{Dong: " 도곡동 "})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "한신아파트", records[0].AptName)

	// 면적 ±0.5㎡ 허용 오차
	records, _, err = svc.GetAptTrades(ctx, "11680", "202607", TradeFilter{Area: 85.0})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 84.92, records[0].Area, 0.5)

	// 허용 오차 밖
	records, _, err = svc.GetAptTrades(ctx, "11680", "202607", TradeFilter{Area: 70.0})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetAptTradesUsesCache(t *testing.T) {
	var calls int32
	svc, _, _ := newTestTradeService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(sampleTradeXML))
	})
	ctx := context.Background()

	_, _, err := svc.GetAptTrades(ctx, "11680", "202607", TradeFilter{})
	require.NoError(t, err)
	_, _, err = svc.GetAptTrades(ctx, "11680", "202607", TradeFilter{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "두 번째 조회는 캐시에서 나가야 한다")
}

func TestGetAptTradesUpstreamError(t *testing.T) {
	svc, _, _ := newTestTradeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><response><header><resultCode>99</resultCode><resultMsg>SERVICE KEY IS NOT REGISTERED</resultMsg></header></response>`))
	})

	_, _, err := svc.GetAptTrades(context.Background(), "11680", "202607", TradeFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "99")
}

func TestParseDealAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"82,500", 82500},
		{"1,250,000", 1250000},
		{"45000", 45000},
		{" 9,999 ", 9999},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDealAmount(tt.raw), "raw=%q", tt.raw)
	}
}
