// Package es 는 매물 검색용 Elasticsearch 클라이언트 기능을 제공한다.
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"zipcheck-go/internal/config"
	"zipcheck-go/internal/model"
	"zipcheck-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES 는 Elasticsearch 클라이언트를 초기화한다.
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName)
}

// createIndexIfNotExists 는 매물 인덱스 존재를 확인하고 없으면 생성한다.
func createIndexIfNotExists(indexName string) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("인덱스 존재 확인 중 오류: %v", err)
		return err
	}
	// 200 이면 이미 존재
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("인덱스 '%s' 이(가) 이미 존재합니다", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("인덱스 '%s' 확인 중 예상치 못한 상태 코드: %d", indexName, res.StatusCode)
		return fmt.Errorf("인덱스 존재 확인 중 예상치 못한 상태 코드: %d", res.StatusCode)
	}

	// 제목/주소는 nori 한국어 형태소 분석기로 색인한다
	mapping := `{
		"mappings": {
			"properties": {
				"listing_id": { "type": "keyword" },
				"source": { "type": "keyword" },
				"region": { "type": "keyword" },
				"title": {
					"type": "text",
					"analyzer": "nori"
				},
				"address": {
					"type": "text",
					"analyzer": "nori"
				},
				"price": { "type": "long" },
				"deposit": { "type": "long" },
				"monthly_rent": { "type": "long" },
				"area": { "type": "float" },
				"floor": { "type": "integer" },
				"url": { "type": "keyword" },
				"crawled_at": { "type": "date" }
			}
		}
	}`

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)

	if err != nil {
		log.Errorf("인덱스 '%s' 생성 실패: %v", indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("인덱스 '%s' 생성 시 Elasticsearch 오류: %s", indexName, res.String())
		return errors.New("인덱스 생성 시 Elasticsearch 오류")
	}

	log.Infof("인덱스 '%s' 생성 완료", indexName)
	return nil
}

// IndexListing 은 매물 한 건을 Elasticsearch 에 색인한다.
func IndexListing(ctx context.Context, indexName string, doc model.EsListing) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: doc.ListingID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("매물 색인 중 Elasticsearch 오류: %s", res.String())
		return errors.New("failed to index listing")
	}

	return nil
}

// SearchListings 는 제목/주소 매치 쿼리로 매물을 검색한다. region 이 비어 있지 않으면 필터로 건다.
func SearchListings(ctx context.Context, indexName, query, region string, size int) ([]model.EsListing, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title", "address"},
			},
		},
	}
	var filter []map[string]interface{}
	if region != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"region": region},
		})
	}

	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := ESClient.Search(
		ESClient.Search.WithContext(ctx),
		ESClient.Search.WithIndex(indexName),
		ESClient.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("매물 검색 중 Elasticsearch 오류: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source model.EsListing `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("검색 응답 파싱 실패: %w", err)
	}

	listings := make([]model.EsListing, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		listings = append(listings, h.Source)
	}
	return listings, nil
}
