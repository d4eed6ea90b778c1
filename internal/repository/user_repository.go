package repository

import (
	"context"
	"time"

	"simplelink/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户存储
type UserRepository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	CreateFlag(ctx context.Context, name string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 是 userRepository 的构造函数
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, translate(err)
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return translate(r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error)
}

// CreateFlag 写入一次性标记，已存在时返回 ErrDuplicate
func (r *userRepository) CreateFlag(ctx context.Context, name string) error {
	return translate(r.db.WithContext(ctx).Create(&model.SystemFlag{Name: name}).Error)
}
