package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Charset 包含用于生成短码的所有字符
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength 是生成的短码的长度
	CodeLength = 8
	// MaxCustomLength 自定义短码最大长度
	MaxCustomLength = 32
	// MaxAttempts 随机短码冲突时的最大尝试次数
	MaxAttempts = 8
	// ChannelBufferSize 是短码通道的缓冲区大小
	ChannelBufferSize = 1000
	// MinFillThreshold 是触发补充的最小阈值
	MinFillThreshold = 100
)

var (
	ErrInvalid   = errors.New("short code has invalid format")
	ErrReserved  = errors.New("short code is reserved")
	ErrConflict  = errors.New("short code already in use")
	ErrExhausted = errors.New("short code allocation exhausted")
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// 与路由或静态资源冲突的路径
var reserved = map[string]struct{}{
	"api":     {},
	"health":  {},
	"admin":   {},
	"static":  {},
	"assets":  {},
	"swagger": {},
}

// Validate 校验自定义短码格式与保留字
func Validate(code string) error {
	if !codePattern.MatchString(code) {
		return ErrInvalid
	}
	if _, ok := reserved[strings.ToLower(code)]; ok {
		return ErrReserved
	}
	return nil
}

// ReserveFunc 以给定短码落库；短码已存在时须返回包装了 ErrConflict 的错误
type ReserveFunc func(code string) error

// Generator 负责生成和提供短码，唯一性由存储层唯一索引保证
type Generator struct {
	codeChan  chan string
	mu        sync.Mutex
	isFilling bool
	stopChan  chan struct{}
	stopOnce  sync.Once
	logger    *zap.SugaredLogger
}

// NewGenerator 创建一个新的短码生成器实例
func NewGenerator(logger *zap.SugaredLogger) *Generator {
	return &Generator{
		codeChan: make(chan string, ChannelBufferSize),
		stopChan: make(chan struct{}),
		logger:   logger.Named("shortcode_generator"),
	}
}

// Start 启动后台短码预生成任务
func (g *Generator) Start() {
	g.logger.Info("启动短码生成器...")
	go g.fillChannel()
	go g.monitorAndRefill()
}

// Stop 停止短码生成器，可重复调用
func (g *Generator) Stop() {
	g.stopOnce.Do(func() {
		g.logger.Info("正在停止短码生成器...")
		close(g.stopChan)
	})
}

// GetCode 取一个候选短码；通道为空时现场生成
func (g *Generator) GetCode() (string, error) {
	select {
	case code := <-g.codeChan:
		return code, nil
	default:
		return generateRandomString(CodeLength)
	}
}

// Allocate 分配短码并通过 reserve 原子地落库。
// requested 非空时只尝试该短码；否则随机生成并在冲突时重试。
func (g *Generator) Allocate(ctx context.Context, requested string, reserve ReserveFunc) (string, error) {
	if requested != "" {
		if err := Validate(requested); err != nil {
			return "", err
		}
		if err := reserve(requested); err != nil {
			return "", err
		}
		return requested, nil
	}

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := g.GetCode()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		err = reserve(code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, ErrConflict) {
			return "", err
		}
		g.logger.Warnf("短码 %s 冲突，第 %d 次重试", code, attempt)
	}
	return "", ErrExhausted
}

// monitorAndRefill 监视通道的填充水平并根据需要进行补充
func (g *Generator) monitorAndRefill() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(g.codeChan) < MinFillThreshold {
				g.fillChannel()
			}
		case <-g.stopChan:
			g.logger.Info("已停止监控和补充任务。")
			return
		}
	}
}

// fillChannel 生成短码并填充通道
func (g *Generator) fillChannel() {
	g.mu.Lock()
	if g.isFilling {
		g.mu.Unlock()
		return
	}
	g.isFilling = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isFilling = false
		g.mu.Unlock()
	}()

	g.logger.Debugf("通道中剩余 %d 个短码，开始补充...", len(g.codeChan))
	for len(g.codeChan) < ChannelBufferSize {
		code, err := generateRandomString(CodeLength)
		if err != nil {
			g.logger.Errorf("生成短码时出错: %v", err)
			return
		}
		select {
		case <-g.stopChan:
			g.logger.Info("填充任务已中断。")
			return
		case g.codeChan <- code:
		default:
			// 并发取用与补充交错时通道可能已满
			return
		}
	}
}

// generateRandomString 使用加密安全的随机数生成器生成一个给定长度的字符串
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(Charset)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}
