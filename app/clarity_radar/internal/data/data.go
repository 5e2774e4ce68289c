package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/cache"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/engine"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/invoker"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/search"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/search/factory"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/signal"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/telemetry"
)

// ProviderSet 引擎及其依赖
var ProviderSet = wire.NewSet(
	NewCache,
	NewSearcher,
	NewCollector,
	NewAnalyzer,
	NewSink,
	NewEngine,
)

// NewCache 连接 redis；未配置或连接失败时缓存始终未命中
func NewCache(c *config.Config, logger log.Logger) (*cache.Client, func(), error) {
	helper := log.NewHelper(logger)
	if c.Redis.URL == "" {
		helper.Warn("未配置 redis，缓存与区域池均不可用")
		return cache.NewClient(nil, c.Redis.Prefix), func() {}, nil
	}

	rdb, err := cache.Connect(context.Background(), c.Redis.URL)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		helper.Warnf("redis 暂不可用，按未命中处理: %v", err)
	}

	cleanup := func() {
		helper.Info("closing the redis client")
		_ = rdb.Close()
	}
	return cache.NewClient(cache.NewRedisBackend(rdb), c.Redis.Prefix), cleanup, nil
}

// NewSearcher 未配置搜索服务时返回 nil，geo 与 ugc 支柱使用默认值
func NewSearcher(c *config.Config, logger log.Logger) (search.Searcher, error) {
	s, err := factory.NewSearcher(c.Search)
	if errors.Is(err, factory.ErrNotConfigured) {
		log.NewHelper(logger).Warn("未配置搜索服务，商家信息与口碑信号使用默认值")
		return nil, nil
	}
	return s, err
}

// NewCollector 组装免费信号聚合器
func NewCollector(c *config.Config, searcher search.Searcher) engine.Collector {
	return signal.NewAggregator(c.Engine.SignalTimeout(), signal.DefaultSources(searcher, nil)...)
}

// NewAnalyzer 未配置 LLM api_key 时返回 nil，引擎只走合成路径
func NewAnalyzer(c *config.Config, logger log.Logger) (engine.Analyzer, error) {
	if c.LLM.APIKey == "" {
		log.NewHelper(logger).Warn("未配置 LLM api_key，真实分析已关闭")
		return nil, nil
	}
	cm, err := invoker.NewChatModel(context.Background(), c.LLM)
	if err != nil {
		return nil, err
	}
	return invoker.NewLLMInvoker(cm, invoker.NewLimiter(c.Concurrency), c.Pricing, c.Engine.RealTimeout()), nil
}

// NewSink 日志遥测始终开启，配置了数据库时同时写入 postgres
func NewSink(c *config.Config, logger log.Logger) (telemetry.Sink, func(), error) {
	sinks := telemetry.Multi{telemetry.NewLogSink(nil)}
	if c.DB.Host == "" {
		return sinks, func() {}, nil
	}

	pg, err := telemetry.NewPostgresSink(c.DB)
	if err != nil {
		log.NewHelper(logger).Errorf("遥测数据库不可用，仅记录日志: %v", err)
		return sinks, func() {}, nil
	}
	cleanup := func() {
		log.NewHelper(logger).Info("closing the telemetry database")
		_ = pg.Close()
	}
	return append(sinks, pg), cleanup, nil
}

// NewEngine 创建编排引擎，cleanup 等待后台写入完成
func NewEngine(c *config.Config, cc *cache.Client, collector engine.Collector, analyzer engine.Analyzer, sink telemetry.Sink) (*engine.Engine, func()) {
	e := engine.New(c.Engine, cc, collector, analyzer, sink)
	return e, e.Wait
}
