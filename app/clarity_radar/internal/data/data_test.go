package data

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/telemetry"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.ApplyDefaults()
	return c
}

func TestNewCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testConfig()
	c.Redis.URL = "redis://" + mr.Addr()

	cc, cleanup, err := NewCache(c, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()

	cc.SetPool(context.Background(), &model.RegionPoolEntry{RegionKey: "dallas-toyota"})
	assert.True(t, mr.Exists("dai:pool:dallas-toyota"))
}

func TestNewCache_NotConfigured(t *testing.T) {
	cc, cleanup, err := NewCache(testConfig(), log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()
	_, ok := cc.GetAnalysis(context.Background(), "foo.com")
	assert.False(t, ok)
}

func TestOptionalProviders(t *testing.T) {
	c := testConfig()

	s, err := NewSearcher(c, log.DefaultLogger)
	require.NoError(t, err)
	assert.Nil(t, s)

	a, err := NewAnalyzer(c, log.DefaultLogger)
	require.NoError(t, err)
	assert.Nil(t, a)

	sink, cleanup, err := NewSink(c, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()
	assert.Len(t, sink.(telemetry.Multi), 1)

	c.Search.Provider = "bing"
	_, err = NewSearcher(c, log.DefaultLogger)
	assert.Error(t, err)
}

func TestNewEngine_SyntheticOnly(t *testing.T) {
	c := testConfig()
	cc, _, _ := NewCache(c, log.DefaultLogger)
	collector := NewCollector(c, nil)
	e, cleanup := NewEngine(c, cc, collector, nil, telemetry.Nop{})
	defer cleanup()

	// 未配置搜索时 geo、ugc 使用默认值，页面抓取失败时其余支柱也回落到默认值
	resp, err := e.Analyze(context.Background(), model.AnalysisRequest{Subject: "invalid.test"})
	require.NoError(t, err)
	assert.False(t, resp.Metadata.Real)
	assert.Equal(t, model.ConfidenceMedium, resp.Confidence)
}

func TestNewAnalyzer_RequiresAPIKey(t *testing.T) {
	c := testConfig()
	c.LLM.BaseURL = "https://api.openai.com/v1"
	c.LLM.Model = "gpt-4o-mini"

	a, err := NewAnalyzer(c, log.DefaultLogger)
	require.NoError(t, err)
	assert.Nil(t, a)

	c.LLM.APIKey = "sk-test"
	a, err = NewAnalyzer(c, log.DefaultLogger)
	require.NoError(t, err)
	assert.NotNil(t, a)
}
