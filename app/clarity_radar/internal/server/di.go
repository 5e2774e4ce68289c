package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/internal/data"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/internal/service"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/engine"
)

// ProviderSet 是分析服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewGRPCServer,
	NewHealthServer,

	// Data providers
	data.ProviderSet,

	// Service providers
	service.NewAnalysisService,
	wire.Bind(new(service.Analyzer), new(*engine.Engine)),
)
