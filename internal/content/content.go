// Package content 는 회사 소개, 약관 등 정적 법률 문서를 내장한다.
package content

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed documents/*.json
var documentsFS embed.FS

// Section 문서의 한 절
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Document 는 내장된 법률/안내 문서 하나다.
type Document struct {
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	EffectiveDate string    `json:"effectiveDate"`
	Sections      []Section `json:"sections"`
}

// Get 은 slug 에 해당하는 문서를 돌려준다. company / terms / privacy 만 유효하다.
func Get(slug string) (*Document, error) {
	raw, err := documentsFS.ReadFile(fmt.Sprintf("documents/%s.json", slug))
	if err != nil {
		return nil, fmt.Errorf("문서를 찾을 수 없습니다: %s", slug)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("문서 파싱 실패: %s: %w", slug, err)
	}
	doc.Slug = slug
	return &doc, nil
}
