package model

import (
	"fmt"
	"time"
)

// LocalTime 은 시간을 "YYYY-MM-DD HH:MM:SS" 로 직렬화하는 커스텀 타입이다.
type LocalTime time.Time

const timeFormat = "2006-01-02 15:04:05"

// MarshalJSON 은 json.Marshaler 인터페이스를 구현한다.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	formatted := fmt.Sprintf("\"%s\"", time.Time(t).Format(timeFormat))
	return []byte(formatted), nil
}
