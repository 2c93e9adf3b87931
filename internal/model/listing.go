package model

import "time"

// Listing 은 'listings' 테이블과 대응되는 수집 매물이다. 금액 단위는 만원이다.
type Listing struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Source      string    `gorm:"type:varchar(30);not null;index" json:"source"`
	SourceID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_source_listing" json:"sourceId"`
	Region      string    `gorm:"type:varchar(50);index;uniqueIndex:idx_source_listing" json:"region"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Address     string    `gorm:"type:varchar(255)" json:"address"`
	Price       int64     `json:"price"`       // 매매가
	Deposit     int64     `json:"deposit"`     // 보증금
	MonthlyRent int64     `json:"monthlyRent"` // 월세
	Area        float64   `json:"area"`        // 전용면적 (㎡)
	Floor       int       `json:"floor"`
	URL         string    `gorm:"type:varchar(500)" json:"url"`
	CrawledAt   time.Time `json:"crawledAt"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Listing) TableName() string {
	return "listings"
}

// EsListing 은 Elasticsearch 매물 인덱스의 문서 구조다.
type EsListing struct {
	ListingID   string  `json:"listing_id"` // source + source_id
	Source      string  `json:"source"`
	Region      string  `json:"region"`
	Title       string  `json:"title"`
	Address     string  `json:"address"`
	Price       int64   `json:"price"`
	Deposit     int64   `json:"deposit"`
	MonthlyRent int64   `json:"monthly_rent"`
	Area        float64 `json:"area"`
	Floor       int     `json:"floor"`
	URL         string  `json:"url"`
	CrawledAt   string  `json:"crawled_at"` // RFC3339
}
