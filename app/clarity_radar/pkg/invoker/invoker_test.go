package invoker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
	dm "github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

type reply struct {
	msg *schema.Message
	err error
}

// fakeModel 按顺序返回预设的回复
type fakeModel struct {
	mu      sync.Mutex
	replies []reply
	calls   int
}

func (f *fakeModel) Generate(ctx context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.replies[min(f.calls, len(f.replies)-1)]
	f.calls++
	return r.msg, r.err
}

func (f *fakeModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func newTestInvoker(m model.BaseChatModel, pricing config.PricingConfig) *LLMInvoker {
	v := NewLLMInvoker(m, nil, pricing, time.Second)
	v.baseDelay = time.Millisecond
	return v
}

func TestAnalyze(t *testing.T) {
	m := &fakeModel{replies: []reply{{msg: &schema.Message{
		Content: "```json\n{\"clarity_score\": 81.6, \"platform_scores\": {\"chatgpt\": 77, \"claude\": 120, \"bing\": 50}}\n```",
	}}}}
	got, err := newTestInvoker(m, config.PricingConfig{PerCallUSD: 0.015}).Analyze(context.Background(), "example-dealer.com")
	require.NoError(t, err)

	require.NotNil(t, got.Partial.ClarityScore)
	assert.Equal(t, 82, *got.Partial.ClarityScore)
	assert.Equal(t, map[dm.Platform]int{dm.PlatformChatGPT: 77, dm.PlatformClaude: 100}, got.Partial.PlatformScores)
	assert.Equal(t, 0.015, got.CostUSD)
}

func TestAnalyze_TokenPricing(t *testing.T) {
	m := &fakeModel{replies: []reply{{msg: &schema.Message{
		Content: `{"clarity_score": 70}`,
		ResponseMeta: &schema.ResponseMeta{Usage: &schema.TokenUsage{
			PromptTokens: 1000, CompletionTokens: 500,
		}},
	}}}}
	got, err := newTestInvoker(m, config.PricingConfig{PerCallUSD: 0.015, InputPerMTok: 2, OutputPerMTok: 8}).
		Analyze(context.Background(), "x.com")
	require.NoError(t, err)
	assert.InDelta(t, 0.006, got.CostUSD, 1e-9)
	assert.Nil(t, got.Partial.PlatformScores)
}

func TestAnalyze_RetriesOn429(t *testing.T) {
	m := &fakeModel{replies: []reply{
		{err: errors.New("error, status code: 429, message: rate limited")},
		{err: errors.New("Too Many Requests")},
		{msg: &schema.Message{Content: `{"clarity_score": 64}`}},
	}}
	got, err := newTestInvoker(m, config.PricingConfig{PerCallUSD: 0.015}).Analyze(context.Background(), "x.com")
	require.NoError(t, err)
	assert.Equal(t, 64, *got.Partial.ClarityScore)
	assert.Equal(t, 3, m.calls)
}

func TestAnalyze_GivesUpAfterRetries(t *testing.T) {
	m := &fakeModel{replies: []reply{{err: errors.New("status code: 429")}}}
	_, err := newTestInvoker(m, config.PricingConfig{}).Analyze(context.Background(), "x.com")
	assert.ErrorIs(t, err, ErrRealAnalysis)
	assert.Equal(t, maxRetries+1, m.calls)
}

func TestAnalyze_Failures(t *testing.T) {
	cases := []struct {
		name  string
		reply reply
	}{
		{"provider error", reply{err: errors.New("connection reset")}},
		{"not json", reply{msg: &schema.Message{Content: "I cannot help with that"}}},
		{"empty object", reply{msg: &schema.Message{Content: "{}"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &fakeModel{replies: []reply{tc.reply}}
			got, err := newTestInvoker(m, config.PricingConfig{}).Analyze(context.Background(), "x.com")
			assert.ErrorIs(t, err, ErrRealAnalysis)
			assert.Nil(t, got)
			assert.Equal(t, 1, m.calls)
		})
	}
}

func TestAnalyze_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &fakeModel{replies: []reply{{msg: &schema.Message{Content: `{"clarity_score": 1}`}}}}
	_, err := newTestInvoker(m, config.PricingConfig{}).Analyze(ctx, "x.com")
	assert.ErrorIs(t, err, ErrRealAnalysis)
}

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(config.ConcurrencyConfig{QPS: 2, RPM: 120})
	assert.Equal(t, 2, l.Burst())
	assert.InDelta(t, 2.0, float64(l.Limit()), 1e-9)
}
