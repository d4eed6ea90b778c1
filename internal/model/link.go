package model

import (
	"time"
)

// Link 短链接模型
type Link struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	OriginalURL string    `gorm:"type:varchar(2048);not null" json:"original_url"`
	ShortCode   string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"short_code"`
	Clicks      int64     `gorm:"not null;default:0" json:"clicks"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}
