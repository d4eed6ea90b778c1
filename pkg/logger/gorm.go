package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 超过该耗时的 SQL 记为慢查询
const slowQueryThreshold = 200 * time.Millisecond

type gormZapLogger struct {
	logger *zap.Logger
	level  gormlogger.LogLevel
	// shared 非 nil 时每次记录都按当前 zap 级别换算
	shared *zap.AtomicLevel
}

// ToGormLogLevel 将 zap 级别映射为 gorm 级别
func ToGormLogLevel(level zapcore.Level) gormlogger.LogLevel {
	switch {
	case level <= zapcore.DebugLevel:
		return gormlogger.Info
	case level == zapcore.InfoLevel, level == zapcore.WarnLevel:
		return gormlogger.Warn
	case level >= zapcore.ErrorLevel:
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}

// NewGormLogger 返回写入 zap 的 gorm 日志实现
func NewGormLogger(l *zap.Logger, level gormlogger.LogLevel) gormlogger.Interface {
	return &gormZapLogger{logger: l.Named("gorm").WithOptions(zap.AddCallerSkip(3)), level: level}
}

// NewSharedGormLogger 返回跟随 zap 原子级别变化的 gorm 日志实现
func NewSharedGormLogger(l *zap.Logger, level *zap.AtomicLevel) gormlogger.Interface {
	return &gormZapLogger{logger: l.Named("gorm").WithOptions(zap.AddCallerSkip(3)), shared: level}
}

// LogMode 固定级别，不再跟随 zap
func (g *gormZapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormZapLogger{logger: g.logger, level: level}
}

func (g *gormZapLogger) current() gormlogger.LogLevel {
	if g.shared != nil {
		return ToGormLogLevel(g.shared.Level())
	}
	return g.level
}

func (g *gormZapLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if g.current() >= gormlogger.Info {
		g.logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormZapLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if g.current() >= gormlogger.Warn {
		g.logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormZapLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if g.current() >= gormlogger.Error {
		g.logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (g *gormZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	level := g.current()
	if level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	// 记录不存在与唯一索引冲突由调用方处理
	case err != nil && !isExpected(err) && level >= gormlogger.Error:
		sql, rows := fc()
		g.logger.Error("SQL 执行失败", zap.Error(err), zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	case elapsed > slowQueryThreshold && level >= gormlogger.Warn:
		sql, rows := fc()
		g.logger.Warn("慢查询", zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	case level >= gormlogger.Info:
		sql, rows := fc()
		g.logger.Debug("SQL", zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	}
}

func isExpected(err error) bool {
	return errors.Is(err, gormlogger.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey)
}
