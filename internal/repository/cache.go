package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "shortlink:"

// negativeMarker 标记不存在的短码，防止缓存穿透
const negativeMarker = "-"

// CachedLink 重定向所需的最小链接信息
type CachedLink struct {
	ID          uint   `json:"id"`
	OriginalURL string `json:"original_url"`
}

// LinkCache Redis 读穿缓存；client 为 nil 时所有操作为空操作
type LinkCache struct {
	client      *redis.Client
	ttl         time.Duration
	negativeTTL time.Duration
}

// NewLinkCache 创建缓存，client 可以为 nil
func NewLinkCache(client *redis.Client, ttl, negativeTTL time.Duration) *LinkCache {
	return &LinkCache{client: client, ttl: ttl, negativeTTL: negativeTTL}
}

// Enabled 是否配置了 Redis
func (c *LinkCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get 返回缓存的链接；found 为 false 表示未命中，link 为 nil 且 found 为 true 表示已知不存在
func (c *LinkCache) Get(ctx context.Context, code string) (link *CachedLink, found bool, err error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, cacheKeyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if val == negativeMarker {
		return nil, true, nil
	}

	var cached CachedLink
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// 格式异常的缓存视为未命中
		return nil, false, nil
	}
	return &cached, true, nil
}

// Set 覆盖写入链接，用于创建与修改后的写穿
func (c *LinkCache) Set(ctx context.Context, code string, link CachedLink) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKeyPrefix+code, data, c.ttl).Err()
}

// Fill 读穿回填；键已存在时不覆盖，晚到的回填不会盖掉删除或修改写入的值
func (c *LinkCache) Fill(ctx context.Context, code string, link CachedLink) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, cacheKeyPrefix+code, data, c.ttl).Err()
}

// FillMissing 回填负缓存，同样不覆盖已有值
func (c *LinkCache) FillMissing(ctx context.Context, code string) error {
	if !c.Enabled() || c.negativeTTL <= 0 {
		return nil
	}
	return c.client.SetNX(ctx, cacheKeyPrefix+code, negativeMarker, c.negativeTTL).Err()
}

// SetMissing 将短码标记为不存在（删除或改名后的墓碑）；未启用负缓存时退化为删除键
func (c *LinkCache) SetMissing(ctx context.Context, code string) error {
	if !c.Enabled() {
		return nil
	}
	if c.negativeTTL <= 0 {
		return c.client.Del(ctx, cacheKeyPrefix+code).Err()
	}
	return c.client.Set(ctx, cacheKeyPrefix+code, negativeMarker, c.negativeTTL).Err()
}
