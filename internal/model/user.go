// Package model 은 애플리케이션의 데이터 모델 정의를 담는다.
package model

import "time"

// User 는 'users' 테이블과 대응된다.
// Provider 는 가입 경로(password / google / kakao), Channel 은 유입 채널이다.
type User struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"type:varchar(255)" json:"-"` // OAuth 가입자는 빈 문자열
	Role       string    `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	Provider   string    `gorm:"type:varchar(20);not null;default:'password'" json:"provider"`
	Channel    string    `gorm:"type:varchar(50)" json:"channel"`
	MFAEnabled bool      `gorm:"not null;default:false" json:"mfaEnabled"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
