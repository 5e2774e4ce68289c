package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/internal/service"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

const OperationAnalysisAnalyze = "/clarity_radar.v1.Analysis/Analyze"

// RegisterAnalysisHTTPServer 注册分析接口
func RegisterAnalysisHTTPServer(s *http.Server, svc *service.AnalysisService) {
	r := s.Route("/")
	r.POST("/v1/analyze", _Analysis_Analyze0_HTTP_Handler(svc))
}

func _Analysis_Analyze0_HTTP_Handler(svc *service.AnalysisService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in service.AnalyzeReq
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationAnalysisAnalyze)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return svc.Analyze(ctx, req.(*service.AnalyzeReq))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*model.AnalysisResponse)
		return ctx.Result(200, reply)
	}
}
