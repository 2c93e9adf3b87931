package model

// TradeRecord 는 실거래가 프록시가 내려주는 정규화된 거래 한 건이다.
// DealAmount 는 쉼표를 제거하고 정수 만원으로 변환한 값이다.
type TradeRecord struct {
	DealAmount int64   `json:"dealAmount"` // 거래금액 (만원)
	AptName    string  `json:"aptName"`
	Area       float64 `json:"area"` // 전용면적 (㎡)
	Floor      int     `json:"floor"`
	BuildYear  int     `json:"buildYear"`
	DealDate   string  `json:"dealDate"` // YYYY-MM-DD
	Dong       string  `json:"dong"`     // 법정동명
	Jibun      string  `json:"jibun"`
}
