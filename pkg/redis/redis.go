package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options 缓存连接参数，Host 为空表示不启用
type Options struct {
	Host        string
	Port        int
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	// IOTimeout 同时作为读写超时，跳转路径上的缓存慢于数据库没有意义
	IOTimeout time.Duration
}

func (o *Options) redisOptions() *redis.Options {
	opts := &redis.Options{
		Addr:         net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
		Password:     o.Password,
		DB:           o.DB,
		PoolSize:     o.PoolSize,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.IOTimeout,
		WriteTimeout: o.IOTimeout,
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 20
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 2 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 500 * time.Millisecond
		opts.WriteTimeout = opts.ReadTimeout
	}
	return opts
}

// NewRedisClient 创建 Redis 客户端并检查连通性，未配置 Host 时返回 nil
func NewRedisClient(opts *Options) (*redis.Client, error) {
	if opts.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(opts.redisOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	return client, nil
}
