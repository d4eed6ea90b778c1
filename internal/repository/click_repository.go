package repository

import (
	"context"
	"time"

	"simplelink/internal/model"

	"gorm.io/gorm"
)

// ClickRepository 点击事件存储，只追加
type ClickRepository interface {
	Insert(ctx context.Context, event *model.ClickEvent) error
	EachTimestamp(ctx context.Context, linkID uint, fn func(time.Time)) error
	CountBySource(ctx context.Context, linkID uint) ([]model.SourceClicks, error)
}

type clickRepository struct {
	db *gorm.DB
}

// NewClickRepository 是 clickRepository 的构造函数
func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Insert(ctx context.Context, event *model.ClickEvent) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

// EachTimestamp 逐行读取点击时间，避免一次性加载全部记录
func (r *clickRepository) EachTimestamp(ctx context.Context, linkID uint, fn func(time.Time)) error {
	rows, err := r.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Select("created_at").
		Where("link_id = ?", linkID).
		Rows()
	if err != nil {
		return translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return err
		}
		fn(ts)
	}
	return rows.Err()
}

// CountBySource 按来源聚合，次数降序、来源升序
func (r *clickRepository) CountBySource(ctx context.Context, linkID uint) ([]model.SourceClicks, error) {
	stats := make([]model.SourceClicks, 0)
	err := r.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Select("source, COUNT(*) AS count").
		Where("link_id = ?", linkID).
		Group("source").
		Order("count DESC").
		Order("source ASC").
		Scan(&stats).Error
	return stats, translate(err)
}
