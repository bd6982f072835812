// Package aegobserve file: internal/aegobserve/debug.go
package aegobserve

import (
	"net/http"
	_ "net/http/pprof" // 自动注册 pprof

	"go.uber.org/zap"
)

// EnablePprof 在指定地址上暴露 /debug/pprof 端点。
// 例如 addr 可以是 "localhost:6060" 或 ":6060"
func EnablePprof(addr string, logger *zap.Logger) {
	if addr == "" {
		logger.Info("pprof endpoint is disabled because address is empty")
		return
	}
	go func() {
		logger.Info("Starting pprof endpoint", zap.String("address", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error("Failed to start pprof endpoint", zap.Error(err))
		}
	}()
}
