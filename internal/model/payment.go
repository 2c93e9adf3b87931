package model

import "time"

// Payment 는 'payments' 테이블과 대응된다. 금액 단위는 원이다.
// 결제 승인 자체는 외부 PG 에서 일어나며 여기는 결과 레코드만 보관한다.
type Payment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	CaseID    string    `gorm:"type:varchar(36);index" json:"caseId"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Method    string    `gorm:"type:varchar(20)" json:"method"`                // card / transfer / kakao_pay
	Status    string    `gorm:"type:varchar(20);not null;index" json:"status"` // paid / refunded / failed
	Channel   string    `gorm:"type:varchar(50)" json:"channel"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Payment) TableName() string {
	return "payments"
}
