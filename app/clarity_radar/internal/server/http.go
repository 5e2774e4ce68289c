package server

import (
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/internal/service"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/metrics"
)

func NewHTTPServer(c *config.Config, s *service.AnalysisService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Server.HTTP.Addr != "" {
		opts = append(opts, http.Address(c.Server.HTTP.Addr))
	}
	if c.Server.HTTP.Timeout != "" {
		if d, err := time.ParseDuration(c.Server.HTTP.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)
	RegisterAnalysisHTTPServer(srv, s)

	srv.Handle("/metrics", metrics.Handler())
	srv.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return srv
}
