package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/blend"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/cache"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/logger"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/metrics"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/subject"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/synth"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/telemetry"
)

// ErrInvalidRequest 请求不合法，唯一会返回给调用方的错误
var ErrInvalidRequest = errors.New("invalid analysis request")

// 请求路径，用于指标标签
const (
	pathCached    = "cached"
	pathPooled    = "pooled"
	pathReal      = "real"
	pathSynthetic = "synthetic"
)

// Collector 免费信号聚合
type Collector interface {
	Collect(ctx context.Context, subject string) model.SignalBundle
}

// Analyzer 计费的真实分析
type Analyzer interface {
	Analyze(ctx context.Context, subject string) (*model.RealResult, error)
}

// Engine 分析编排引擎，进程内只创建一次
type Engine struct {
	cfg       config.EngineConfig
	cache     *cache.Client
	collector Collector
	analyzer  Analyzer
	sink      telemetry.Sink
	synth     *synth.Generator

	random func() float64
	now    func() time.Time

	group singleflight.Group
	wg    sync.WaitGroup
}

// Option 引擎选项
type Option func(*Engine)

// WithRandom 替换真实分析闸门的随机源，返回 [0,1) 的值
func WithRandom(f func() float64) Option {
	return func(e *Engine) { e.random = f }
}

// WithClock 替换时钟
func WithClock(f func() time.Time) Option {
	return func(e *Engine) { e.now = f }
}

// New 创建引擎；analyzer 为 nil 时永远不走真实分析，sink 为 nil 时丢弃遥测
func New(cfg config.EngineConfig, c *cache.Client, collector Collector, analyzer Analyzer, sink telemetry.Sink, opts ...Option) *Engine {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	e := &Engine{
		cfg:       cfg,
		cache:     c,
		collector: collector,
		analyzer:  analyzer,
		sink:      sink,
		synth:     synth.NewGenerator(cfg.SubscriptionCost),
		random:    rand.Float64,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze 处理一次分析请求
//
// 顺序：主体缓存 -> 区域池 -> 真实分析闸门 -> 免费信号与真实分析并发 -> 混合 -> 写缓存。
// 除非请求不合法，总会返回结果。缓存、池与遥测的写入在返回后于后台完成。
func (e *Engine) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResponse, error) {
	if req.SourceChannel == "" {
		req.SourceChannel = model.ChannelAPI
	}
	if !req.SourceChannel.Valid() {
		return nil, fmt.Errorf("%w: unknown source channel %q", ErrInvalidRequest, req.SourceChannel)
	}
	subj := subject.Normalize(req.Subject)
	if err := subject.Validate(subj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	start := time.Now()

	if !req.ForceRefresh {
		if stored, ok := e.cache.GetAnalysis(ctx, subj); ok {
			out := stored.Clone()
			out.Metadata.Cached = true
			out.Metadata.Timestamp = e.now().UTC()
			metrics.ObserveRequest(pathCached, start)
			return out, nil
		}
	}

	region, hasRegion := subject.RegionHint(subj)

	if !req.ForceRefresh && hasRegion {
		if pool, ok := e.cache.GetPool(ctx, region); ok {
			out := e.synth.FromPool(subj, pool)
			out.Metadata.Timestamp = e.now().UTC()
			stored := out.Clone()
			e.background(ctx, func(ctx context.Context) {
				e.cache.SetAnalysis(ctx, subj, stored)
			})
			metrics.ObserveRequest(pathPooled, start)
			return out, nil
		}
	}

	if !e.cfg.DedupeInflight {
		return e.compute(ctx, req, subj, region, hasRegion, start), nil
	}

	key := subj
	if req.ForceRefresh {
		key += "#force"
	}
	// 共享计算不受任一调用方取消的影响，耗时由信号源与真实分析各自的超时约束
	shared := context.WithoutCancel(ctx)
	v, _, _ := e.group.Do(key, func() (any, error) {
		return e.compute(shared, req, subj, region, hasRegion, start), nil
	})
	return v.(*model.AnalysisResponse).Clone(), nil
}

func (e *Engine) compute(ctx context.Context, req model.AnalysisRequest, subj, region string, hasRegion bool, start time.Time) *model.AnalysisResponse {
	useReal := e.analyzer != nil && (req.ForceRefresh || e.random() < e.cfg.RealQueryRate)

	var realRes *model.RealResult
	var wg sync.WaitGroup
	if useReal {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.analyzer.Analyze(ctx, subj)
			if err != nil {
				metrics.RealFailuresTotal.Inc()
				logger.Log.Warnf("真实分析失败，降级为合成结果 [%s]: %v", subj, err)
				return
			}
			realRes = res
		}()
	}
	bundle := e.collector.Collect(ctx, subj)
	wg.Wait()

	out := blend.Blend(e.synth.FromSignals(subj, bundle), realRes, e.cfg.RealBlendWeight)
	out.Metadata.Timestamp = e.now().UTC()

	// 请求已取消时结果多为默认值，只返回不落缓存
	if err := ctx.Err(); err != nil {
		logger.Log.Warnf("请求已取消，结果不写入缓存 [%s]: %v", subj, err)
		if realRes != nil {
			metrics.CostUSDTotal.Add(realRes.CostUSD)
		}
		metrics.ObserveRequest(pathSynthetic, start)
		return out
	}

	path := telemetry.PathSynthetic
	if realRes != nil {
		path = telemetry.PathReal
		metrics.CostUSDTotal.Add(realRes.CostUSD)
	}

	stored := out.Clone()
	ev := telemetry.Event{
		RequestID:     uuid.New(),
		Subject:       subj,
		SourceChannel: req.SourceChannel,
		PathTaken:     path,
		CostUSD:       out.Metadata.CostUSD,
		ClarityScore:  out.ClarityScore,
		Timestamp:     out.Metadata.Timestamp,
	}
	e.background(ctx, func(ctx context.Context) {
		e.cache.SetAnalysis(ctx, subj, stored)
		if realRes != nil && hasRegion {
			e.cache.SetPool(ctx, &model.RegionPoolEntry{
				RegionKey: region,
				BaseScores: model.BaseScores{
					Clarity: stored.ClarityScore,
					Geo:     stored.PillarScores.Geo,
					Schema:  stored.PillarScores.Schema,
					UGC:     stored.PillarScores.UGC,
				},
				StoredAt: stored.Metadata.Timestamp,
			})
		}
		if err := e.sink.Record(ctx, ev); err != nil {
			logger.Log.Warnf("遥测写入失败 [%s]: %v", subj, err)
		}
	})

	if path == telemetry.PathReal {
		metrics.ObserveRequest(pathReal, start)
	} else {
		metrics.ObserveRequest(pathSynthetic, start)
	}
	return out
}

// background 在脱离请求取消的上下文中执行写入
func (e *Engine) background(parent context.Context, fn func(ctx context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx := context.WithoutCancel(parent)
		if t := e.cfg.WriteTimeout(); t > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t)
			defer cancel()
		}
		fn(ctx)
	}()
}

// Wait 等待所有后台写入完成
func (e *Engine) Wait() {
	e.wg.Wait()
}
