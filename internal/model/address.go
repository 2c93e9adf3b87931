package model

// AddressResult 는 주소 검색 프록시가 내려주는 정규화된 주소 한 건이다.
// 정부 API 의 원본 필드를 그대로 옮기되, 누락 값은 빈 문자열로 채운다.
type AddressResult struct {
	RoadAddr     string `json:"roadAddr"`
	JibunAddr    string `json:"jibunAddr"`
	ZipNo        string `json:"zipNo"`
	BuildingName string `json:"buildingName"`
	AdmCd        string `json:"admCd"`  // 행정구역코드 10자리
	LawdCd       string `json:"lawdCd"` // 법정동코드 앞 5자리
	SiNm         string `json:"siNm"`
	SggNm        string `json:"sggNm"`
	EmdNm        string `json:"emdNm"`
}

// LegalDongResult 는 법정동 코드 조회 결과 한 건이다.
type LegalDongResult struct {
	Code   string `json:"code"`   // 법정동코드 10자리
	LawdCd string `json:"lawdCd"` // 실거래가 조회용 앞 5자리
	Name   string `json:"name"`   // 시도+시군구+읍면동 전체 이름
}
