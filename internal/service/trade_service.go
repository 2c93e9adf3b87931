package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"zipcheck-go/internal/model"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/molit"

	"github.com/go-redis/redis/v8"
)

// TradeFilter 는 실거래 조회의 선택적 필터다.
// Area 는 0 보다 클 때만 적용되며 허용 오차는 ±0.5㎡ 다.
type TradeFilter struct {
	AptName string
	Dong    string
	Area    float64
}

// areaTolerance 는 전용면적 필터의 허용 오차(㎡)다.
const areaTolerance = 0.5

// ErrInvalidParams 는 쿼리 파라미터 형식 오류를 나타낸다.
var ErrInvalidParams = errors.New("잘못된 조회 파라미터")

var (
	lawdCdPattern  = regexp.MustCompile(`^\d{5}$`)
	dealYmdPattern = regexp.MustCompile(`^\d{6}$`)
)

// TradeService 인터페이스는 아파트 실거래가 조회 작업을 정의한다.
type TradeService interface {
	GetAptTrades(ctx context.Context, lawdCd, dealYmd string, filter TradeFilter) ([]model.TradeRecord, int, error)
}

type tradeService struct {
	molitClient molit.Client
	redisClient *redis.Client
}

// NewTradeService 는 새 TradeService 인스턴스를 생성한다.
func NewTradeService(molitClient molit.Client, redisClient *redis.Client) TradeService {
	return &tradeService{molitClient: molitClient, redisClient: redisClient}
}

const tradeCacheTTL = time.Hour

// GetAptTrades 는 법정동코드+거래년월의 실거래 내역을 조회하고 필터를 적용한다.
// 월 단위 원본 응답은 Redis 에 1시간 캐시한다. 반환되는 정수는 필터 적용 후 건수다.
func (s *tradeService) GetAptTrades(ctx context.Context, lawdCd, dealYmd string, filter TradeFilter) ([]model.TradeRecord, int, error) {
	if !lawdCdPattern.MatchString(lawdCd) {
		return nil, 0, fmt.Errorf("%w: lawdCd 는 5자리 숫자여야 합니다", ErrInvalidParams)
	}
	if !dealYmdPattern.MatchString(dealYmd) {
		return nil, 0, fmt.Errorf("%w: dealYmd 는 YYYYMM 형식이어야 합니다", ErrInvalidParams)
	}

	records, err := s.loadMonth(ctx, lawdCd, dealYmd)
	if err != nil {
		return nil, 0, err
	}

	filtered := applyTradeFilter(records, filter)
	return filtered, len(filtered), nil
}

// loadMonth 는 캐시를 먼저 보고, 없으면 공공 API 전체 페이지를 읽어 온다.
func (s *tradeService) loadMonth(ctx context.Context, lawdCd, dealYmd string) ([]model.TradeRecord, error) {
	cacheKey := fmt.Sprintf("trades:%s:%s", lawdCd, dealYmd)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var records []model.TradeRecord
			if jsonErr := json.Unmarshal([]byte(cached), &records); jsonErr == nil {
				return records, nil
			}
		} else if err != redis.Nil {
			// 캐시 장애는 치명적이지 않으므로 기록만 하고 원천으로 간다
			log.Warnf("[TradeService] 실거래 캐시 조회 실패: %v", err)
		}
	}

	const pageSize = 100
	var records []model.TradeRecord
	for pageNo := 1; ; pageNo++ {
		resp, err := s.molitClient.GetAptTrades(ctx, lawdCd, dealYmd, pageNo, pageSize)
		if err != nil {
			return nil, err
		}
		for _, item := range resp.Body.Items.Item {
			records = append(records, normalizeTradeItem(item))
		}
		if pageNo*pageSize >= resp.Body.TotalCount {
			break
		}
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(records); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, payload, tradeCacheTTL).Err(); err != nil {
				log.Warnf("[TradeService] 실거래 캐시 저장 실패: %v", err)
			}
		}
	}
	return records, nil
}

// normalizeTradeItem 은 API 원본 한 건을 응답용 레코드로 변환한다.
func normalizeTradeItem(item molit.TradeItem) model.TradeRecord {
	return model.TradeRecord{
		DealAmount: ParseDealAmount(item.DealAmount),
		AptName:    strings.TrimSpace(item.AptName),
		Area:       item.ExcluArea,
		Floor:      item.Floor,
		BuildYear:  item.BuildYear,
		DealDate:   fmt.Sprintf("%04d-%02d-%02d", item.DealYear, item.DealMonth, item.DealDay),
		Dong:       strings.TrimSpace(item.UmdName),
		Jibun:      strings.TrimSpace(item.Jibun),
	}
}

// ParseDealAmount 는 "82,500" 형태의 거래금액 문자열을 정수 만원으로 변환한다.
// 파싱에 실패하면 0 을 반환한다.
func ParseDealAmount(raw string) int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0
	}
	amount, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0
	}
	return amount
}

// applyTradeFilter 는 단지명/법정동/면적 필터를 차례로 적용한다.
func applyTradeFilter(records []model.TradeRecord, filter TradeFilter) []model.TradeRecord {
	result := make([]model.TradeRecord, 0, len(records))
	for _, r := range records {
		if filter.AptName != "" && !strings.Contains(r.AptName, strings.TrimSpace(filter.AptName)) {
			continue
		}
		if filter.Dong != "" && r.Dong != strings.TrimSpace(filter.Dong) {
			continue
		}
		if filter.Area > 0 && math.Abs(r.Area-filter.Area) > areaTolerance {
			continue
		}
		result = append(result, r)
	}
	return result
}
