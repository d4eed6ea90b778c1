package model

import (
	"time"
)

// DefaultSource 未带 source 参数的点击归入该来源
const DefaultSource = "direct"

// ClickEvent 一次重定向产生的点击记录，只追加不修改
type ClickEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	LinkID    uint      `gorm:"not null;index:idx_click_link_time,priority:1" json:"link_id"`
	Source    string    `gorm:"type:varchar(64);not null;default:'direct'" json:"source"`
	CreatedAt time.Time `gorm:"not null;index:idx_click_link_time,priority:2" json:"created_at"`
}

func (ClickEvent) TableName() string {
	return "click_events"
}

// DailyClicks 按天聚合的点击数
type DailyClicks struct {
	Date   string `json:"date" example:"2024-01-31"`
	Clicks int64  `json:"clicks" example:"12"`
}

// SourceClicks 按来源聚合的点击数
type SourceClicks struct {
	Source string `json:"source" example:"twitter"`
	Count  int64  `json:"count" example:"3"`
}
