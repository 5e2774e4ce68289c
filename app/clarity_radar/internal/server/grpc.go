package server

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
)

// HealthService 对外报告健康状态的服务名
const HealthService = "clarity_radar.v1.Analysis"

// NewHealthServer 整体与分析服务均标记为 SERVING
func NewHealthServer() *health.Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
	return hs
}

// NewGRPCServer 只暴露健康检查，供编排系统探活
func NewGRPCServer(c *config.Config, hs *health.Server, logger log.Logger) *grpc.Server {
	var opts = []grpc.ServerOption{
		grpc.Middleware(
			recovery.Recovery(),
		),
		grpc.CustomHealth(),
	}
	if c.Server.GRPC.Addr != "" {
		opts = append(opts, grpc.Address(c.Server.GRPC.Addr))
	}

	srv := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}
