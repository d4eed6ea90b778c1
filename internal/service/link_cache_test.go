package service

import (
	"context"
	"testing"
	"time"

	"simplelink/internal/apperrors"
	"simplelink/internal/repository"
	"simplelink/internal/shortcode"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type cachedLinkService struct {
	*LinkService
	store *repository.Store
	mr    *miniredis.Miniredis
	logs  *observer.ObservedLogs
}

// newCachedLinkService 使用内存 Redis 作为读穿缓存
func newCachedLinkService(t *testing.T) *cachedLinkService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core).Sugar()
	store := newTestStore(t)
	cache := repository.NewLinkCache(client, time.Hour, time.Minute)
	return &cachedLinkService{
		LinkService: NewLinkService(store, cache, shortcode.NewGenerator(logger), logger),
		store:       store,
		mr:          mr,
		logs:        logs,
	}
}

func (s *cachedLinkService) cached(t *testing.T, code string) string {
	t.Helper()
	val, err := s.mr.Get("shortlink:" + code)
	if err != nil {
		return ""
	}
	return val
}

func TestLinkService_ResolveReadThrough(t *testing.T) {
	s := newCachedLinkService(t)
	ctx := context.Background()
	id := mustCreate(t, s.LinkService, 1, CreateLinkInput{URL: "https://a.example.com", CustomCode: "hit"})
	s.mr.FlushAll()

	resolved, err := s.Resolve(ctx, "hit")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com", resolved.OriginalURL)
	assert.Contains(t, s.cached(t, "hit"), "https://a.example.com")
	assert.Equal(t, time.Hour, s.mr.TTL("shortlink:hit"))

	// 绕过服务直接改库，命中缓存时仍返回缓存值
	link, err := s.store.Links().FindByID(ctx, id)
	require.NoError(t, err)
	link.OriginalURL = "https://db-only.example.com"
	require.NoError(t, s.store.Links().Update(ctx, link))

	resolved, err = s.Resolve(ctx, "hit")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com", resolved.OriginalURL)
}

func TestLinkService_NegativeCacheClearedByCreate(t *testing.T) {
	s := newCachedLinkService(t)
	ctx := context.Background()

	_, err := s.Resolve(ctx, "later")
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)
	assert.Equal(t, "-", s.cached(t, "later"))
	assert.Equal(t, time.Minute, s.mr.TTL("shortlink:later"))

	mustCreate(t, s.LinkService, 1, CreateLinkInput{URL: "https://later.example.com", CustomCode: "later"})
	resolved, err := s.Resolve(ctx, "later")
	require.NoError(t, err)
	assert.Equal(t, "https://later.example.com", resolved.OriginalURL)
}

func TestLinkService_UpdateRefreshesCache(t *testing.T) {
	s := newCachedLinkService(t)
	ctx := context.Background()
	id := mustCreate(t, s.LinkService, 1, CreateLinkInput{URL: "https://old.example.com", CustomCode: "old"})

	_, err := s.Resolve(ctx, "old")
	require.NoError(t, err)

	newURL := "https://new.example.com"
	_, err = s.Update(ctx, 1, id, UpdateLinkInput{URL: &newURL})
	require.NoError(t, err)
	resolved, err := s.Resolve(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, newURL, resolved.OriginalURL)

	newCode := "renamed"
	_, err = s.Update(ctx, 1, id, UpdateLinkInput{CustomCode: &newCode})
	require.NoError(t, err)
	assert.Equal(t, "-", s.cached(t, "old"))
	_, err = s.Resolve(ctx, "old")
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)
	resolved, err = s.Resolve(ctx, "renamed")
	require.NoError(t, err)
	assert.Equal(t, newURL, resolved.OriginalURL)
}

func TestLinkService_DeleteLeavesTombstone(t *testing.T) {
	s := newCachedLinkService(t)
	ctx := context.Background()
	id := mustCreate(t, s.LinkService, 1, CreateLinkInput{URL: "https://gone.example.com", CustomCode: "gone"})

	stale, err := s.Resolve(ctx, "gone")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, 1, id))
	assert.Equal(t, "-", s.cached(t, "gone"))

	// 删除前读到旧行的解析请求此时才回填
	require.NoError(t, s.cache.Fill(ctx, "gone", *stale))

	_, err = s.Resolve(ctx, "gone")
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)
}

func TestLinkService_ResolveFallsBackWhenCacheFails(t *testing.T) {
	s := newCachedLinkService(t)
	ctx := context.Background()
	mustCreate(t, s.LinkService, 1, CreateLinkInput{URL: "https://db.example.com", CustomCode: "db"})

	s.mr.SetError("ERR cache unavailable")
	resolved, err := s.Resolve(ctx, "db")
	require.NoError(t, err)
	assert.Equal(t, "https://db.example.com", resolved.OriginalURL)
	assert.Equal(t, 1, s.logs.FilterMessageSnippet("读取缓存失败").Len())

	_, err = s.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrLinkNotFound)
}
