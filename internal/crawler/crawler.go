// Package crawler 는 외부 매물 목록 페이지를 수집해 저장한다.
package crawler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"zipcheck-go/internal/config"
	"zipcheck-go/internal/model"
	"zipcheck-go/internal/repository"
	"zipcheck-go/pkg/es"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/metrics"
	"zipcheck-go/pkg/tasks"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Crawler 는 매물 수집 작업의 의존성과 로직을 묶는다.
type Crawler struct {
	httpClient  *resty.Client
	listingRepo repository.ListingRepository
	esIndex     string
}

// NewCrawler 는 새 Crawler 인스턴스를 생성한다.
func NewCrawler(cfg config.CrawlerConfig, esIndex string, listingRepo repository.ListingRepository) *Crawler {
	client := resty.New().
		SetBaseURL(cfg.SourceBaseURL).
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(15 * time.Second).
		SetRetryCount(2)

	return &Crawler{
		httpClient:  client,
		listingRepo: listingRepo,
		esIndex:     esIndex,
	}
}

// Process 는 수집 작업의 메인 함수다. 목록 페이지를 받아 매물 카드를 파싱하고
// MySQL 과 Elasticsearch 에 저장한다.
func (c *Crawler) Process(ctx context.Context, task tasks.CrawlTask) error {
	log.Infof("[Crawler] 수집 시작: source=%s region=%s", task.Source, task.Region)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("region", task.Region).
		Get("/listings")
	if err != nil {
		return fmt.Errorf("매물 목록 요청 실패: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("매물 목록 응답 오류: status=%d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return fmt.Errorf("매물 목록 HTML 파싱 실패: %w", err)
	}

	listings := c.parseListings(doc, task.Source, task.Region)
	if len(listings) == 0 {
		log.Warnf("[Crawler] 파싱된 매물이 없음: source=%s region=%s", task.Source, task.Region)
		return nil
	}

	saved := 0
	for i := range listings {
		listing := &listings[i]
		if err := c.listingRepo.Upsert(listing); err != nil {
			log.Errorf("[Crawler] 매물 저장 실패: sourceId=%s error: %v", listing.SourceID, err)
			continue
		}
		if err := es.IndexListing(ctx, c.esIndex, toEsListing(listing)); err != nil {
			// 검색 색인 실패는 수집 자체를 실패시키지 않는다
			log.Warnf("[Crawler] 매물 색인 실패: sourceId=%s error: %v", listing.SourceID, err)
		}
		saved++
	}

	metrics.CrawledListingsTotal.WithLabelValues(task.Source).Add(float64(saved))
	log.Infof("[Crawler] 수집 완료: source=%s region=%s parsed=%d saved=%d",
		task.Source, task.Region, len(listings), saved)
	return nil
}

// parseListings 는 목록 페이지의 매물 카드를 순회하며 Listing 으로 변환한다.
func (c *Crawler) parseListings(doc *goquery.Document, source, region string) []model.Listing {
	var listings []model.Listing
	now := time.Now()

	doc.Find("div.listing-card").Each(func(i int, sel *goquery.Selection) {
		sourceID, ok := sel.Attr("data-listing-id")
		if !ok || sourceID == "" {
			return
		}

		title := strings.TrimSpace(sel.Find(".listing-title").Text())
		if title == "" {
			return
		}

		listing := model.Listing{
			Source:      source,
			SourceID:    sourceID,
			Region:      region,
			Title:       title,
			Address:     strings.TrimSpace(sel.Find(".listing-address").Text()),
			Price:       parseMoney(sel.Find(".listing-price").Text()),
			Deposit:     parseMoney(sel.Find(".listing-deposit").Text()),
			MonthlyRent: parseMoney(sel.Find(".listing-rent").Text()),
			Area:        parseArea(sel.Find(".listing-area").Text()),
			Floor:       parseFloor(sel.Find(".listing-floor").Text()),
			CrawledAt:   now,
		}
		if href, ok := sel.Find("a.listing-link").Attr("href"); ok {
			listing.URL = absoluteURL(c.httpClient.BaseURL, href)
		}
		listings = append(listings, listing)
	})

	return listings
}

// toEsListing 은 DB 매물을 검색 문서로 변환한다.
func toEsListing(l *model.Listing) model.EsListing {
	return model.EsListing{
		ListingID:   l.Source + ":" + l.SourceID,
		Source:      l.Source,
		Region:      l.Region,
		Title:       l.Title,
		Address:     l.Address,
		Price:       l.Price,
		Deposit:     l.Deposit,
		MonthlyRent: l.MonthlyRent,
		Area:        l.Area,
		Floor:       l.Floor,
		URL:         l.URL,
		CrawledAt:   l.CrawledAt.Format(time.RFC3339),
	}
}

// parseMoney 는 "1억 2,000" / "25,000만원" 같은 금액 문자열을 만원 단위 정수로 바꾼다.
func parseMoney(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	var total int64
	if idx := strings.Index(raw, "억"); idx >= 0 {
		eok := cleanNumber(raw[:idx])
		total += eok * 10000
		raw = raw[idx+len("억"):]
	}
	total += cleanNumber(raw)
	return total
}

// cleanNumber 는 쉼표와 단위 문자를 걷어내고 정수만 남긴다.
func cleanNumber(raw string) int64 {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseArea 는 "84.92㎡" 형태의 면적 문자열을 파싱한다.
func parseArea(raw string) float64 {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "㎡"))
	if raw == "" {
		return 0
	}
	area, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return area
}

// parseFloor 는 "12층" 형태의 층수 문자열을 파싱한다.
func parseFloor(raw string) int {
	return int(cleanNumber(raw))
}

// absoluteURL 상대 링크를 절대 URL 로 바꾼다.
func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}
