package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/engine"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

type mockEngine struct {
	got  model.AnalysisRequest
	resp *model.AnalysisResponse
	err  error
}

func (m *mockEngine) Analyze(_ context.Context, req model.AnalysisRequest) (*model.AnalysisResponse, error) {
	m.got = req
	return m.resp, m.err
}

func TestAnalysisService_Analyze(t *testing.T) {
	m := &mockEngine{resp: &model.AnalysisResponse{Subject: "example-dealer.com", ClarityScore: 73}}
	s := NewAnalysisService(m, log.DefaultLogger)

	resp, err := s.Analyze(context.Background(), &AnalyzeReq{
		Subject:       "https://www.example-dealer.com",
		SourceChannel: "report",
		ForceRefresh:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 73, resp.ClarityScore)
	assert.Equal(t, model.AnalysisRequest{
		Subject:       "https://www.example-dealer.com",
		SourceChannel: model.ChannelReport,
		ForceRefresh:  true,
	}, m.got)
}

func TestAnalysisService_InvalidSubject(t *testing.T) {
	m := &mockEngine{err: fmt.Errorf("%w: subject is empty", engine.ErrInvalidRequest)}
	_, err := NewAnalysisService(m, log.DefaultLogger).Analyze(context.Background(), &AnalyzeReq{})

	se := kerrors.FromError(err)
	assert.Equal(t, int32(400), se.Code)
	assert.Equal(t, "INVALID_SUBJECT", se.Reason)
}

func TestAnalysisService_UnexpectedError(t *testing.T) {
	m := &mockEngine{err: errors.New("boom")}
	_, err := NewAnalysisService(m, log.DefaultLogger).Analyze(context.Background(), &AnalyzeReq{Subject: "x.com"})
	assert.True(t, kerrors.IsInternalServer(err))
}
