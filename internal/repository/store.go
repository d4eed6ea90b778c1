package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store 聚合各仓储，事务内通过同一个 *gorm.DB 构造
type Store struct {
	db *gorm.DB
}

// NewStore 创建仓储集合
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Links() LinkRepository   { return NewLinkRepository(s.db) }
func (s *Store) Clicks() ClickRepository { return NewClickRepository(s.db) }
func (s *Store) Users() UserRepository   { return NewUserRepository(s.db) }

// Transaction 在事务中执行 fn，fn 返回错误时回滚
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping 检查数据库连通性
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
