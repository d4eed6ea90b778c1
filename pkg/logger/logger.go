package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger
	// Level 在 zap 与 gorm 日志之间共享
	Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Options 日志配置
type Options struct {
	Level      string
	Path       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// InitLogger 初始化 zap 日志记录器
func InitLogger(opts Options) {
	if lvl, err := zapcore.ParseLevel(opts.Level); err == nil {
		Level.SetLevel(lvl)
	}

	core := zapcore.NewCore(getEncoder(), getLogWriter(opts), Level)

	Logger = zap.New(core, zap.AddCaller())
	Sugar = Logger.Sugar()

	// 将全局的 zap logger 替换为我们配置好的 logger
	zap.ReplaceGlobals(Logger)
}

// getEncoder 设置日志编码格式
func getEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// getLogWriter 指定日志写入位置 (文件和控制台)
func getLogWriter(opts Options) zapcore.WriteSyncer {
	stdout := zapcore.AddSync(os.Stdout)
	if opts.Path == "" {
		return stdout
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return stdout
	}

	// 使用 lumberjack 实现日志切割和归档
	lumberJackLogger := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    withDefault(opts.MaxSize, 10),
		MaxBackups: withDefault(opts.MaxBackups, 5),
		MaxAge:     withDefault(opts.MaxAge, 30),
		Compress:   opts.Compress,
		LocalTime:  true,
	}
	return zapcore.NewMultiWriteSyncer(stdout, zapcore.AddSync(lumberJackLogger))
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
