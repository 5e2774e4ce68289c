package synth

import (
	"crypto/md5"
	"hash/fnv"
	"math"
	"math/rand/v2"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/issues"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/signal"
)

// 各平台相对综合分的抖动上限
var jitterBounds = map[model.Platform]int{
	model.PlatformChatGPT:    5,
	model.PlatformClaude:     4,
	model.PlatformPerplexity: 6,
	model.PlatformGemini:     5,
	model.PlatformCopilot:    4,
}

// Generator 合成结果生成器
type Generator struct {
	subscriptionCost float64
}

// NewGenerator subscriptionCost 用于计算 ROI 倍数
func NewGenerator(subscriptionCost float64) *Generator {
	return &Generator{subscriptionCost: subscriptionCost}
}

// ClarityFromSignals 综合分：geo 25%，schema 30%，ugc 25%，performance 20%
func ClarityFromSignals(b model.SignalBundle) int {
	// 以百分比整数计算，避免浮点误差影响 .5 的舍入
	v := 25*model.ClampScore(b.Geo) + 30*model.ClampScore(b.Schema) + 25*model.ClampScore(b.UGC) + 20*model.ClampScore(b.Performance)
	return model.ClampScore((v + 50) / 100)
}

// FromSignals 由免费信号生成结果，同一 subject 与信号包输出相同
func (g *Generator) FromSignals(subject string, b model.SignalBundle) *model.AnalysisResponse {
	pillars := model.PillarScores{
		Geo:         model.ClampScore(b.Geo),
		Schema:      model.ClampScore(b.Schema),
		UGC:         model.ClampScore(b.UGC),
		Performance: model.ClampScore(b.Performance),
		Freshness:   model.ClampScore(b.Freshness),
	}
	return g.build(subject, ClarityFromSignals(b), pillars, model.Metadata{})
}

// FromPool 由区域池基准生成结果，按 subject 哈希加 ±5% 偏移
func (g *Generator) FromPool(subject string, entry *model.RegionPoolEntry) *model.AnalysisResponse {
	base := entry.BaseScores
	clarity := math.Round(math.Max(0, math.Min(100, float64(base.Clarity)*(1+PoolVariance(subject)))))

	pillars := model.PillarScores{
		Geo:         model.ClampScore(base.Geo),
		Schema:      model.ClampScore(base.Schema),
		UGC:         model.ClampScore(base.UGC),
		Performance: signal.DefaultPerformance,
		Freshness:   signal.DefaultFreshness,
	}
	return g.build(subject, int(clarity), pillars, model.Metadata{Pooled: true})
}

// PoolVariance md5(subject) 首字节映射到 [-0.05, 0.05]
func PoolVariance(subject string) float64 {
	sum := md5.Sum([]byte(subject))
	return float64(sum[0])/255*0.1 - 0.05
}

// PlatformScores 以综合分为中心按平台抖动，随机源由 subject 决定
func PlatformScores(subject string, clarity int) map[model.Platform]int {
	rng := rand.New(rand.NewPCG(seed(subject), 0))
	scores := make(map[model.Platform]int, len(model.Platforms))
	for _, p := range model.Platforms {
		b := jitterBounds[p]
		scores[p] = model.ClampScore(clarity + rng.IntN(2*b+1) - b)
	}
	return scores
}

func seed(subject string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(subject))
	return h.Sum64()
}

func (g *Generator) build(subject string, clarity int, pillars model.PillarScores, meta model.Metadata) *model.AnalysisResponse {
	list := issues.Derive(pillars)
	return &model.AnalysisResponse{
		Subject:        subject,
		ClarityScore:   clarity,
		Confidence:     model.ConfidenceFor(meta),
		PlatformScores: PlatformScores(subject, clarity),
		PillarScores:   pillars,
		Issues:         list,
		RevenueImpact:  issues.Impact(list, g.subscriptionCost),
		Metadata:       meta,
	}
}
