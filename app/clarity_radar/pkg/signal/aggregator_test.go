package signal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

type fakeSource struct {
	pillar Pillar
	score  int
	err    error
	delay  time.Duration
	// ignoreCtx 模拟不响应取消的信号源
	ignoreCtx bool
	panics    bool
}

func (f *fakeSource) Pillar() Pillar { return f.pillar }

func (f *fakeSource) Measure(ctx context.Context, _ string) (int, error) {
	if f.panics {
		panic("boom")
	}
	if f.delay > 0 {
		if f.ignoreCtx {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
	}
	return f.score, f.err
}

func TestCollect_NoSourcesGivesDefaults(t *testing.T) {
	got := NewAggregator(time.Second).Collect(context.Background(), "foo.com")
	assert.Equal(t, Defaults(), got)
}

func TestCollect_AllSucceed(t *testing.T) {
	a := NewAggregator(time.Second,
		&fakeSource{pillar: PillarGeo, score: 80},
		&fakeSource{pillar: PillarSchema, score: 60},
		&fakeSource{pillar: PillarUGC, score: 70},
		&fakeSource{pillar: PillarPerformance, score: 85},
		&fakeSource{pillar: PillarFreshness, score: 72},
	)
	got := a.Collect(context.Background(), "example-dealer.com")
	assert.Equal(t, model.SignalBundle{Geo: 80, Schema: 60, UGC: 70, Performance: 85, Freshness: 72}, got)
}

func TestCollect_FailuresDegradePerPillar(t *testing.T) {
	a := NewAggregator(50*time.Millisecond,
		&fakeSource{pillar: PillarGeo, err: errors.New("listing api down")},
		&fakeSource{pillar: PillarSchema, score: 40},
		&fakeSource{pillar: PillarUGC, panics: true},
		&fakeSource{pillar: PillarPerformance, score: 150},
		&fakeSource{pillar: PillarFreshness, delay: time.Second},
	)
	got := a.Collect(context.Background(), "foo.com")
	assert.Equal(t, DefaultGeo, got.Geo)
	assert.Equal(t, 40, got.Schema)
	assert.Equal(t, DefaultUGC, got.UGC)
	assert.Equal(t, 100, got.Performance)
	assert.Equal(t, DefaultFreshness, got.Freshness)
}

func TestCollect_BoundedBySlowestTimeout(t *testing.T) {
	a := NewAggregator(80*time.Millisecond,
		&fakeSource{pillar: PillarGeo, score: 90, delay: 20 * time.Millisecond},
		&fakeSource{pillar: PillarSchema, delay: 2 * time.Second, ignoreCtx: true},
		&fakeSource{pillar: PillarUGC, delay: 2 * time.Second},
	)

	start := time.Now()
	got := a.Collect(context.Background(), "foo.com")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, 90, got.Geo)
	assert.Equal(t, DefaultSchema, got.Schema)
	assert.Equal(t, DefaultUGC, got.UGC)
}

func TestCollect_RequestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAggregator(time.Second, &fakeSource{pillar: PillarGeo, score: 99, delay: 500 * time.Millisecond})
	got := a.Collect(ctx, "foo.com")
	assert.Equal(t, DefaultGeo, got.Geo)
}
