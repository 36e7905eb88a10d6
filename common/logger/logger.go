package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志配置
type Options struct {
	Level   string // debug | info | warn | error，无法识别时为 info
	Format  string // json | console，默认 json
	Service string // 写入每条日志的 service_name
	// Stderr 为 true 时所有输出写到标准错误（CLI 的标准输出留给命令结果）
	Stderr bool
}

// New 创建 zap Logger
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if opts.Format == "console" {
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = level > zapcore.DebugLevel
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	if opts.Stderr {
		config.OutputPaths = []string{"stderr"}
	}

	l, err := config.Build()
	if err != nil {
		return nil, err
	}

	var fields []zap.Field
	if opts.Service != "" {
		fields = append(fields, zap.String("service_name", opts.Service))
	}
	if opts.Format != "console" {
		if hostname, err := os.Hostname(); err == nil && hostname != "" {
			fields = append(fields, zap.String("hostname", hostname))
		}
	}
	return l.With(fields...), nil
}

// NewLogger 服务进程使用的简写：输出到标准输出
func NewLogger(level, format, serviceName string) (*zap.Logger, error) {
	return New(Options{Level: level, Format: format, Service: serviceName})
}
