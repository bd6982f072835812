// Package aegobserve file: internal/aegobserve/logging.go
package aegobserve

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel 把配置中的级别字符串转换为 zap 级别，未知值按 INFO 处理
func ParseLevel(levelStr string) zapcore.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return zap.DebugLevel
	case "WARN":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// InitLogger 初始化全局的结构化日志记录器并返回它。
// format 为 "console" 时使用开发格式，否则输出 JSON。应在 main 函数的早期调用。
func InitLogger(levelStr, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(levelStr))
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("构建日志记录器失败: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
