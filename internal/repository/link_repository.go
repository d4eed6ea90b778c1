package repository

import (
	"context"

	"simplelink/internal/model"

	"gorm.io/gorm"
)

// LinkRepository 短链接存储
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	FindByID(ctx context.Context, id uint) (*model.Link, error)
	FindByShortCode(ctx context.Context, code string) (*model.Link, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Link, error)
	Update(ctx context.Context, link *model.Link) error
	Delete(ctx context.Context, id uint) error
	IncrementClicks(ctx context.Context, id uint, delta int64) error
	ReconcileClicks(ctx context.Context) (int64, error)
	All(ctx context.Context) ([]model.Link, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository 是 linkRepository 的构造函数
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	return translate(r.db.WithContext(ctx).Create(link).Error)
}

func (r *linkRepository) FindByID(ctx context.Context, id uint) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).First(&link, id).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// FindByShortCode 走 short_code 唯一索引
func (r *linkRepository) FindByShortCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("short_code = ?", code).Take(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *linkRepository) ListByUser(ctx context.Context, userID uint) ([]model.Link, error) {
	links := make([]model.Link, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&links).Error
	return links, translate(err)
}

// Update 只更新可编辑字段
func (r *linkRepository) Update(ctx context.Context, link *model.Link) error {
	result := r.db.WithContext(ctx).Model(link).
		Select("original_url", "short_code", "updated_at").
		Updates(link)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除链接及其点击记录，调用方应在事务中执行
func (r *linkRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("link_id = ?", id).Delete(&model.ClickEvent{}).Error; err != nil {
		return translate(err)
	}
	result := db.Delete(&model.Link{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementClicks 原子递增点击数，链接不存在时返回 ErrNotFound
func (r *linkRepository) IncrementClicks(ctx context.Context, id uint, delta int64) error {
	result := r.db.WithContext(ctx).Model(&model.Link{}).
		Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", delta))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReconcileClicks 以 click_events 计数重算 clicks，返回被修正的链接数
func (r *linkRepository) ReconcileClicks(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)
	counted := db.Model(&model.ClickEvent{}).
		Select("COUNT(*)").
		Where("click_events.link_id = links.id")
	result := db.Model(&model.Link{}).
		Where("clicks <> (?)", counted).
		UpdateColumn("clicks", counted)
	return result.RowsAffected, translate(result.Error)
}

// All 导出与对账使用
func (r *linkRepository) All(ctx context.Context) ([]model.Link, error) {
	links := make([]model.Link, 0)
	err := r.db.WithContext(ctx).Order("id ASC").Find(&links).Error
	return links, translate(err)
}
