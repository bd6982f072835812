// Package rpc file: internal/transport/rpc/health.go
package rpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName 是记录服务在健康检查协议中的名称
const ServiceName = "recordaegis.v1.Records"

// Checker 报告后端存储是否可用
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// HealthReporter 定期探测存储，并把结果写入 gRPC 健康检查服务
type HealthReporter struct {
	srv      *health.Server
	checker  Checker
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

// NewServer 创建注册了健康检查服务的 gRPC 服务器
func NewServer(checker Checker, interval time.Duration, logger *zap.Logger) (*grpc.Server, *HealthReporter) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	hs := health.NewServer()
	// 首次探测前视为不可用
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	return s, &HealthReporter{
		srv:      hs,
		checker:  checker,
		interval: interval,
		timeout:  2 * time.Second,
		log:      logger,
	}
}

// Probe 执行一次探测并更新状态
func (r *HealthReporter) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := r.checker.HealthCheck(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		r.log.Warn("[gRPC Health] 存储探测失败", zap.Error(err))
	}
	r.srv.SetServingStatus("", status)
	r.srv.SetServingStatus(ServiceName, status)
	return status
}

// Run 按间隔探测，直到 ctx 结束。结束时所有服务标记为 NOT_SERVING。
func (r *HealthReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			r.srv.Shutdown()
			return
		case <-ticker.C:
			r.Probe(ctx)
		}
	}
}
