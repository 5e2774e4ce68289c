package signal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/logger"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/metrics"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

// Pillar 信号对应的支柱
type Pillar string

const (
	PillarGeo         Pillar = "geo"
	PillarSchema      Pillar = "schema"
	PillarUGC         Pillar = "ugc"
	PillarPerformance Pillar = "performance"
	PillarFreshness   Pillar = "freshness"
)

// 各支柱在信号源不可用时的中性默认值
const (
	DefaultGeo         = 75
	DefaultSchema      = 70
	DefaultUGC         = 80
	DefaultPerformance = 85
	DefaultFreshness   = 72
)

// ErrNoSignal 信号源没有拿到可用数据
var ErrNoSignal = errors.New("signal: no usable data")

// Source 单个免费信号源
type Source interface {
	Pillar() Pillar
	Measure(ctx context.Context, subject string) (int, error)
}

// Defaults 全部使用默认值的信号包
func Defaults() model.SignalBundle {
	return model.SignalBundle{
		Geo:         DefaultGeo,
		Schema:      DefaultSchema,
		UGC:         DefaultUGC,
		Performance: DefaultPerformance,
		Freshness:   DefaultFreshness,
	}
}

// Aggregator 并发调用所有信号源，任何一个失败只影响自己的支柱
type Aggregator struct {
	sources []Source
	timeout time.Duration
}

// NewAggregator 创建聚合器，timeout 作用于每个信号源
func NewAggregator(timeout time.Duration, sources ...Source) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{sources: sources, timeout: timeout}
}

type outcome struct {
	pillar Pillar
	score  int
	err    error
}

// Collect 返回完整的信号包，耗时受最慢信号源的超时约束
func (a *Aggregator) Collect(ctx context.Context, subject string) model.SignalBundle {
	bundle := Defaults()
	if len(a.sources) == 0 {
		return bundle
	}

	results := make(chan outcome, len(a.sources))
	for _, src := range a.sources {
		go func(src Source) {
			results <- a.measure(ctx, src, subject)
		}(src)
	}

	for range a.sources {
		o := <-results
		if o.err != nil {
			metrics.SignalFallbacksTotal.WithLabelValues(string(o.pillar)).Inc()
			logger.Log.Warnf("信号源失败，使用默认值 [%s/%s]: %v", subject, o.pillar, o.err)
			continue
		}
		apply(&bundle, o.pillar, model.ClampScore(o.score))
	}
	return bundle
}

func (a *Aggregator) measure(ctx context.Context, src Source, subject string) outcome {
	sctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{pillar: src.Pillar(), err: fmt.Errorf("panic: %v", r)}
			}
		}()
		score, err := src.Measure(sctx, subject)
		done <- outcome{pillar: src.Pillar(), score: score, err: err}
	}()

	// 不等待不响应 ctx 的信号源
	select {
	case o := <-done:
		return o
	case <-sctx.Done():
		return outcome{pillar: src.Pillar(), err: sctx.Err()}
	}
}

func apply(b *model.SignalBundle, p Pillar, score int) {
	switch p {
	case PillarGeo:
		b.Geo = score
	case PillarSchema:
		b.Schema = score
	case PillarUGC:
		b.UGC = score
	case PillarPerformance:
		b.Performance = score
	case PillarFreshness:
		b.Freshness = score
	}
}
