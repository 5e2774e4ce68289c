package blend

import (
	"math"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

// Blend 按权重合并真实结果与合成结果
//
// r 为 nil 时原样返回 synthetic。否则对两边都有的数值字段取
// round(real*weight + synthetic*(1-weight))，真实结果缺失的字段保留合成值。
// synthetic 不会被修改。
func Blend(synthetic *model.AnalysisResponse, r *model.RealResult, weight float64) *model.AnalysisResponse {
	if r == nil {
		return synthetic
	}

	out := synthetic.Clone()
	if r.Partial.ClarityScore != nil {
		out.ClarityScore = mix(*r.Partial.ClarityScore, synthetic.ClarityScore, weight)
	}
	for p, rv := range r.Partial.PlatformScores {
		if sv, ok := synthetic.PlatformScores[p]; ok {
			out.PlatformScores[p] = mix(rv, sv, weight)
		}
	}

	out.Metadata.Real = true
	out.Metadata.CostUSD = r.CostUSD
	out.Confidence = model.ConfidenceFor(out.Metadata)
	return out
}

func mix(actual, synthetic int, weight float64) int {
	v := float64(model.ClampScore(actual))*weight + float64(synthetic)*(1-weight)
	return model.ClampScore(int(math.Round(v)))
}
