package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 主配置结构
type Config struct {
	App       App    `yaml:"app"`
	Server    Server `yaml:"server"`
	Database  DB     `yaml:"database"`
	Cache     Cache  `yaml:"cache"`
	Auth      Auth   `yaml:"auth"`
	RateLimit Limit  `yaml:"rate_limit"`
	Stats     Stats  `yaml:"stats"`
	Log       Log    `yaml:"log"`
	I18n      I18n   `yaml:"i18n"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
}

// 服务器配置
type Server struct {
	Port            int `yaml:"port"`
	ReadTimeout     int `yaml:"read_timeout"`
	WriteTimeout    int `yaml:"write_timeout"`
	ShutdownTimeout int `yaml:"shutdown_timeout"`
	// 可信反向代理的 IP/CIDR，为空时忽略 X-Forwarded-For
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// 数据库配置，driver 为 mysql 或 sqlite；dsn 非空时优先使用
type DB struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// 缓存配置（Redis），host 为空时不启用
type Cache struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	TTL         int    `yaml:"ttl_seconds"`
	NegativeTTL int    `yaml:"negative_ttl_seconds"`
	PoolSize    int    `yaml:"pool_size"`
	DialTimeout int    `yaml:"dial_timeout_ms"`
	IOTimeout   int    `yaml:"io_timeout_ms"`
}

// 认证配置
type Auth struct {
	Secret            string `yaml:"secret"`
	Issuer            string `yaml:"issuer"`
	ExpirationHours   int    `yaml:"expiration_hours"`
	RequireSetupToken bool   `yaml:"require_setup_token"`
	SetupTokenFile    string `yaml:"setup_token_file"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  int64    `yaml:"requests_per_minute"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 点击统计配置
type Stats struct {
	Timezone      string `yaml:"timezone"`
	QueueSize     int    `yaml:"queue_size"`
	Workers       int    `yaml:"workers"`
	// nil 表示未配置；0 表示不重试
	MaxRetries    *int   `yaml:"max_retries"`
	RetryBackoff  int    `yaml:"retry_backoff_ms"`
	ReconcileCron string `yaml:"reconcile_cron"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// 国际化配置
type I18n struct {
	DefaultLanguage string `yaml:"default_language"`
}

// Load 加载配置：.env -> yaml 文件 -> 环境变量覆盖 -> 默认值
func Load(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("解析配置文件失败: %w", err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Auth.Secret, "JWT_SECRET")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Cache.Host, "REDIS_HOST")
	setString(&c.Cache.Password, "REDIS_PASSWORD")
	setString(&c.App.Mode, "APP_MODE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setInt(&c.Server.Port, "SERVER_PORT")
	setInt(&c.Cache.Port, "REDIS_PORT")
}

func (c *Config) applyDefaults() {
	defaultString(&c.App.Name, "simplelink")
	defaultString(&c.App.Mode, "development")
	defaultInt(&c.Server.Port, 8080)
	defaultInt(&c.Server.ReadTimeout, 10)
	defaultInt(&c.Server.WriteTimeout, 10)
	defaultInt(&c.Server.ShutdownTimeout, 10)
	defaultString(&c.Database.Driver, "sqlite")
	defaultInt(&c.Cache.Port, 6379)
	defaultInt(&c.Cache.TTL, 3600)
	defaultInt(&c.Cache.NegativeTTL, 60)
	defaultInt(&c.Cache.PoolSize, 20)
	defaultInt(&c.Cache.DialTimeout, 2000)
	defaultInt(&c.Cache.IOTimeout, 500)
	defaultString(&c.Auth.Issuer, "simplelink")
	defaultInt(&c.Auth.ExpirationHours, 24)
	defaultString(&c.Auth.SetupTokenFile, "admin-setup-token.txt")
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 600
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 100
	}
	defaultString(&c.Stats.Timezone, "UTC")
	defaultInt(&c.Stats.QueueSize, 4096)
	defaultInt(&c.Stats.Workers, 4)
	if c.Stats.MaxRetries == nil || *c.Stats.MaxRetries < 0 {
		retries := 3
		c.Stats.MaxRetries = &retries
	}
	defaultInt(&c.Stats.RetryBackoff, 50)
	defaultString(&c.Stats.ReconcileCron, "@every 10m")
	defaultString(&c.Log.Level, "info")
	defaultString(&c.I18n.DefaultLanguage, "en")
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("auth.secret 或环境变量 JWT_SECRET 不能为空")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port 无效: %d", c.Server.Port)
	}
	if c.Database.Driver != "mysql" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver 只支持 mysql 或 sqlite: %q", c.Database.Driver)
	}
	if _, err := time.LoadLocation(c.Stats.Timezone); err != nil {
		return fmt.Errorf("stats.timezone 无效: %w", err)
	}
	return nil
}

// Location 统计按天分桶所用的时区
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Stats.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RetryLimit 点击写入失败后的最大重试次数
func (s Stats) RetryLimit() int {
	if s.MaxRetries == nil {
		return 0
	}
	return *s.MaxRetries
}

// DialTimeoutDuration 建立 Redis 连接的超时
func (c Cache) DialTimeoutDuration() time.Duration {
	return time.Duration(c.DialTimeout) * time.Millisecond
}

// IOTimeoutDuration Redis 单次读写的超时
func (c Cache) IOTimeoutDuration() time.Duration {
	return time.Duration(c.IOTimeout) * time.Millisecond
}

// RetryBackoffDuration 点击写入重试的初始退避
func (s Stats) RetryBackoffDuration() time.Duration {
	return time.Duration(s.RetryBackoff) * time.Millisecond
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func defaultString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func defaultInt(dst *int, def int) {
	if *dst <= 0 {
		*dst = def
	}
}
