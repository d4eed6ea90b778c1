package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"simplelink/internal/apperrors"
	"simplelink/internal/model"
	"simplelink/internal/repository"
	"simplelink/internal/shortcode"

	"go.uber.org/zap"
)

// MaxURLLength 原始链接最大长度
const MaxURLLength = 2048

// MaxSourceLength 来源标签最大长度，超出部分截断
const MaxSourceLength = 64

// cacheTimeout 缓存操作不应拖慢请求
const cacheTimeout = 500 * time.Millisecond

// CreateLinkInput 创建短链接的参数
type CreateLinkInput struct {
	URL        string
	CustomCode string
	// Source 非空时在创建事务中记录一次初始点击
	Source string
}

// UpdateLinkInput 修改短链接的参数，nil 表示不修改
type UpdateLinkInput struct {
	URL        *string
	CustomCode *string
}

// LinkService 短链接的增删改查与解析
type LinkService struct {
	store     *repository.Store
	cache     *repository.LinkCache
	generator *shortcode.Generator
	logger    *zap.SugaredLogger
}

// NewLinkService 创建 LinkService，cache 可以为 nil
func NewLinkService(store *repository.Store, cache *repository.LinkCache, generator *shortcode.Generator, logger *zap.SugaredLogger) *LinkService {
	return &LinkService{
		store:     store,
		cache:     cache,
		generator: generator,
		logger:    logger.Named("link_service"),
	}
}

// Create 为 owner 创建短链接
func (s *LinkService) Create(ctx context.Context, owner uint, in CreateLinkInput) (*model.Link, error) {
	target, err := ValidateURL(in.URL)
	if err != nil {
		return nil, err
	}
	source := ""
	if strings.TrimSpace(in.Source) != "" {
		source = NormalizeSource(in.Source)
	}

	var created *model.Link
	reserve := func(code string) error {
		link := &model.Link{UserID: owner, OriginalURL: target, ShortCode: code}
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			if err := tx.Links().Create(ctx, link); err != nil {
				return err
			}
			if source == "" {
				return nil
			}
			if err := tx.Clicks().Insert(ctx, &model.ClickEvent{LinkID: link.ID, Source: source}); err != nil {
				return err
			}
			if err := tx.Links().IncrementClicks(ctx, link.ID, 1); err != nil {
				return err
			}
			link.Clicks = 1
			return nil
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("reserve %s: %w", code, shortcode.ErrConflict)
		}
		if err != nil {
			return err
		}
		created = link
		return nil
	}

	code, err := s.generator.Allocate(ctx, strings.TrimSpace(in.CustomCode), reserve)
	if err != nil {
		return nil, allocationError(err)
	}

	// 覆盖可能存在的负缓存
	s.cacheDo(ctx, func(c context.Context) error { return s.cache.Set(c, code, cachedOf(created)) })
	s.logger.Infof("用户 %d 创建短链接 %s -> %s", owner, code, target)
	return created, nil
}

// List 返回 owner 的全部链接，按创建时间倒序
func (s *LinkService) List(ctx context.Context, owner uint) ([]model.Link, error) {
	links, err := s.store.Links().ListByUser(ctx, owner)
	if err != nil {
		return nil, apperrors.SystemError(err)
	}
	return links, nil
}

// Get 返回 owner 拥有的链接
func (s *LinkService) Get(ctx context.Context, owner, id uint) (*model.Link, error) {
	return ownedLink(ctx, s.store, owner, id)
}

// Update 修改目标地址或短码
func (s *LinkService) Update(ctx context.Context, owner, id uint, in UpdateLinkInput) (*model.Link, error) {
	link, err := ownedLink(ctx, s.store, owner, id)
	if err != nil {
		return nil, err
	}

	oldCode := link.ShortCode
	changed := false
	if in.URL != nil {
		target, err := ValidateURL(*in.URL)
		if err != nil {
			return nil, err
		}
		if target != link.OriginalURL {
			link.OriginalURL = target
			changed = true
		}
	}
	if in.CustomCode != nil {
		code := strings.TrimSpace(*in.CustomCode)
		if code != "" && code != link.ShortCode {
			if err := shortcode.Validate(code); err != nil {
				return nil, allocationError(err)
			}
			link.ShortCode = code
			changed = true
		}
	}
	if !changed {
		return link, nil
	}

	if err := s.store.Links().Update(ctx, link); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.ErrCodeTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.ErrLinkNotFound
		default:
			return nil, apperrors.SystemError(err)
		}
	}

	s.cacheDo(ctx, func(c context.Context) error { return s.cache.Set(c, link.ShortCode, cachedOf(link)) })
	if oldCode != link.ShortCode {
		s.tombstone(ctx, oldCode)
	}
	return link, nil
}

// Delete 删除链接及其点击记录
func (s *LinkService) Delete(ctx context.Context, owner, id uint) error {
	link, err := ownedLink(ctx, s.store, owner, id)
	if err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Links().Delete(ctx, link.ID)
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrLinkNotFound
	case err != nil:
		return apperrors.SystemError(err)
	}

	s.tombstone(ctx, link.ShortCode)
	s.logger.Infof("用户 %d 删除短链接 %s", owner, link.ShortCode)
	return nil
}

// Resolve 解析短码，优先读取缓存
func (s *LinkService) Resolve(ctx context.Context, code string) (*repository.CachedLink, error) {
	if shortcode.Validate(code) != nil {
		return nil, apperrors.ErrLinkNotFound
	}

	if s.cache.Enabled() {
		cctx, cancel := context.WithTimeout(ctx, cacheTimeout)
		cached, found, err := s.cache.Get(cctx, code)
		cancel()
		switch {
		case err != nil:
			s.logger.Warnf("读取缓存失败: %v", err)
		case found && cached == nil:
			return nil, apperrors.ErrLinkNotFound
		case found:
			return cached, nil
		}
	}

	link, err := s.store.Links().FindByShortCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		s.cacheDo(ctx, func(c context.Context) error { return s.cache.FillMissing(c, code) })
		return nil, apperrors.ErrLinkNotFound
	}
	if err != nil {
		return nil, apperrors.SystemError(err)
	}

	resolved := cachedOf(link)
	s.cacheDo(ctx, func(c context.Context) error { return s.cache.Fill(c, code, resolved) })
	return &resolved, nil
}

// Export 导出全部链接，供命令行工具使用；userID 为 0 时导出所有用户
func (s *LinkService) Export(ctx context.Context, userID uint) ([]model.Link, error) {
	if userID != 0 {
		return s.List(ctx, userID)
	}
	links, err := s.store.Links().All(ctx)
	if err != nil {
		return nil, apperrors.SystemError(err)
	}
	return links, nil
}

// tombstone 让已删除或改名的短码在缓存中立即失效
func (s *LinkService) tombstone(ctx context.Context, code string) {
	s.cacheDo(ctx, func(c context.Context) error { return s.cache.SetMissing(c, code) })
}

func cachedOf(link *model.Link) repository.CachedLink {
	return repository.CachedLink{ID: link.ID, OriginalURL: link.OriginalURL}
}

func (s *LinkService) cacheDo(ctx context.Context, fn func(context.Context) error) {
	if !s.cache.Enabled() {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()
	if err := fn(cctx); err != nil {
		s.logger.Warnf("更新缓存失败: %v", err)
	}
}

// ownedLink 查找链接并校验归属：不存在 404，非本人 403
func ownedLink(ctx context.Context, store *repository.Store, owner, id uint) (*model.Link, error) {
	link, err := store.Links().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrLinkNotFound
	}
	if err != nil {
		return nil, apperrors.SystemError(err)
	}
	if link.UserID != owner {
		return nil, apperrors.ErrForbidden
	}
	return link, nil
}

// ValidateURL 校验并返回去除首尾空白的链接
func ValidateURL(raw string) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" || len(target) > MaxURLLength {
		return "", apperrors.ErrInvalidURL
	}
	lower := strings.ToLower(target)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "", apperrors.ErrInvalidURL
	}
	parsed, err := url.ParseRequestURI(target)
	if err != nil || parsed.Host == "" {
		return "", apperrors.ErrInvalidURL
	}
	return target, nil
}

// NormalizeSource 去除空白并截断，空值归为 direct
func NormalizeSource(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return model.DefaultSource
	}
	if len(source) > MaxSourceLength {
		source = truncateUTF8(source, MaxSourceLength)
	}
	return source
}

// truncateUTF8 按字节截断且不拆分多字节字符
func truncateUTF8(s string, limit int) string {
	end := 0
	for i := range s {
		if i > limit {
			break
		}
		end = i
	}
	return s[:end]
}

func allocationError(err error) error {
	switch {
	case errors.Is(err, shortcode.ErrInvalid):
		return apperrors.ErrInvalidCode
	case errors.Is(err, shortcode.ErrReserved):
		return apperrors.ErrReservedCode
	case errors.Is(err, shortcode.ErrConflict):
		return apperrors.ErrCodeTaken
	case errors.Is(err, shortcode.ErrExhausted):
		return apperrors.ErrAllocationExhausted
	default:
		return apperrors.From(err)
	}
}
