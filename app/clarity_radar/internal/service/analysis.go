package service

import (
	"context"
	"errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/engine"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

// Analyzer 分析引擎
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResponse, error)
}

// AnalyzeReq POST /v1/analyze 的请求体
type AnalyzeReq struct {
	Subject            string `json:"subject"`
	SourceChannel      string `json:"source_channel"`
	ForceRefresh       bool   `json:"force_refresh"`
	IncludeCompetitors bool   `json:"include_competitors"`
}

type AnalysisService struct {
	engine Analyzer
	log    *log.Helper
}

func NewAnalysisService(e Analyzer, logger log.Logger) *AnalysisService {
	return &AnalysisService{
		engine: e,
		log:    log.NewHelper(logger),
	}
}

func (s *AnalysisService) Analyze(ctx context.Context, req *AnalyzeReq) (*model.AnalysisResponse, error) {
	resp, err := s.engine.Analyze(ctx, model.AnalysisRequest{
		Subject:            req.Subject,
		SourceChannel:      model.SourceChannel(req.SourceChannel),
		ForceRefresh:       req.ForceRefresh,
		IncludeCompetitors: req.IncludeCompetitors,
	})
	if errors.Is(err, engine.ErrInvalidRequest) {
		return nil, kerrors.BadRequest("INVALID_SUBJECT", err.Error())
	}
	if err != nil {
		s.log.Errorf("analyze %q: %v", req.Subject, err)
		return nil, kerrors.InternalServer("ANALYSIS_FAILED", "analysis failed")
	}
	return resp, nil
}
