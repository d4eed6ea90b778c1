package logger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestInitLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	InitLogger(Options{Level: "warn", Path: path})
	t.Cleanup(func() { Level.SetLevel(zapcore.InfoLevel) })

	assert.NotNil(t, Logger)
	assert.NotNil(t, Sugar)
	assert.Equal(t, zapcore.WarnLevel, Level.Level())
	assert.Same(t, Logger, zap.L())

	// lumberjack 在首次写入时创建文件
	Logger.Warn("rotation target")
	assert.FileExists(t, path)
}

func TestToGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, ToGormLogLevel(zapcore.DebugLevel))
	assert.Equal(t, gormlogger.Warn, ToGormLogLevel(zapcore.InfoLevel))
	assert.Equal(t, gormlogger.Warn, ToGormLogLevel(zapcore.WarnLevel))
	assert.Equal(t, gormlogger.Error, ToGormLogLevel(zapcore.ErrorLevel))
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn)
	sql := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), sql, gorm.ErrDuplicatedKey)
	l.Trace(ctx, time.Now(), sql, nil)
	assert.Zero(t, logs.Len(), "expected errors and fast queries are not logged at warn level")

	l.Trace(ctx, time.Now(), sql, errors.New("syntax error"))
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	}

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}

func TestSharedGormLogger_FollowsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	l := NewSharedGormLogger(zap.New(core), &level)
	sql := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sql, nil)
	assert.Zero(t, logs.Len())

	level.SetLevel(zapcore.DebugLevel)
	l.Trace(ctx, time.Now(), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("SQL").Len())

	level.SetLevel(zapcore.ErrorLevel)
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 1, logs.Len(), "slow queries are only warnings")
}
