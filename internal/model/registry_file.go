package model

import "time"

// RegistryFile 은 'registry_files' 테이블과 대응된다.
// MinIO 에 올라간 등기부등본 PDF 한 건의 메타데이터다.
type RegistryFile struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ObjectName  string    `gorm:"type:varchar(255);not null" json:"objectName"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"fileName"`
	Size        int64     `gorm:"not null" json:"size"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType"`
	UserID      *uint     `gorm:"index" json:"userId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (RegistryFile) TableName() string {
	return "registry_files"
}
