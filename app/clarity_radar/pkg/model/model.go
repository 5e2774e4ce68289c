package model

import "time"

// SourceChannel 请求来源渠道
type SourceChannel string

const (
	ChannelAPI         SourceChannel = "api"
	ChannelReport      SourceChannel = "report"
	ChannelInteractive SourceChannel = "interactive"
)

// Valid 判断渠道是否合法
func (c SourceChannel) Valid() bool {
	switch c {
	case ChannelAPI, ChannelReport, ChannelInteractive:
		return true
	}
	return false
}

// AnalysisRequest 一次可见度分析请求
type AnalysisRequest struct {
	Subject            string        `json:"subject"`
	SourceChannel      SourceChannel `json:"source_channel"`
	ForceRefresh       bool          `json:"force_refresh"`
	IncludeCompetitors bool          `json:"include_competitors"`
}

// Platform AI 平台
type Platform string

const (
	PlatformChatGPT    Platform = "chatgpt"
	PlatformClaude     Platform = "claude"
	PlatformPerplexity Platform = "perplexity"
	PlatformGemini     Platform = "gemini"
	PlatformCopilot    Platform = "copilot"
)

// Platforms 固定顺序的平台列表
var Platforms = []Platform{
	PlatformChatGPT,
	PlatformClaude,
	PlatformPerplexity,
	PlatformGemini,
	PlatformCopilot,
}

// Confidence 置信度等级，只由结果来源决定
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Severity 问题严重程度
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SignalBundle 免费信号聚合结果，各项均为 0-100
type SignalBundle struct {
	Geo         int `json:"geo"`
	Schema      int `json:"schema"`
	UGC         int `json:"ugc"`
	Performance int `json:"performance"`
	Freshness   int `json:"freshness"`
}

// PillarScores 支柱得分
type PillarScores struct {
	Geo         int `json:"geo"`
	Schema      int `json:"schema"`
	UGC         int `json:"ugc"`
	Performance int `json:"cwv"`
	Freshness   int `json:"freshness"`
}

// PartialRealResult 真实分析的部分结果，缺失字段由合成结果补齐
type PartialRealResult struct {
	ClarityScore   *int             `json:"clarity_score,omitempty"`
	PlatformScores map[Platform]int `json:"platform_scores,omitempty"`
}

// RealResult 真实分析结果及其费用
type RealResult struct {
	Partial PartialRealResult
	CostUSD float64
}

// Issue 单条问题及其月度影响（美元）
type Issue struct {
	ID               string   `json:"id"`
	Severity         Severity `json:"severity"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	MonthlyImpact    int64    `json:"impact_monthly"`
	FixEffort        string   `json:"fix_effort"`
	AutoFixAvailable bool     `json:"auto_fix_available"`
}

// RevenueImpact 收入影响汇总
type RevenueImpact struct {
	MonthlyAtRisk int64 `json:"monthly_at_risk"`
	AnnualAtRisk  int64 `json:"annual_at_risk"`
	ROIMultiple   int   `json:"roi_vs_subscription"`
}

// Metadata 结果来源信息
type Metadata struct {
	Cached    bool      `json:"cached"`
	Pooled    bool      `json:"pooled"`
	Real      bool      `json:"real"`
	CostUSD   float64   `json:"cost_usd"`
	Timestamp time.Time `json:"timestamp"`
}

// AnalysisResponse 完整分析结果
type AnalysisResponse struct {
	Subject        string           `json:"subject"`
	ClarityScore   int              `json:"clarity_score"`
	Confidence     Confidence       `json:"confidence"`
	PlatformScores map[Platform]int `json:"platform_scores"`
	PillarScores   PillarScores     `json:"pillar_scores"`
	Issues         []Issue          `json:"issues"`
	RevenueImpact  RevenueImpact    `json:"revenue_impact"`
	Metadata       Metadata         `json:"metadata"`
}

// Clone 深拷贝，共享结果时使用
func (r *AnalysisResponse) Clone() *AnalysisResponse {
	if r == nil {
		return nil
	}
	c := *r
	c.PlatformScores = make(map[Platform]int, len(r.PlatformScores))
	for k, v := range r.PlatformScores {
		c.PlatformScores[k] = v
	}
	if r.Issues != nil {
		c.Issues = make([]Issue, len(r.Issues))
		copy(c.Issues, r.Issues)
	}
	return &c
}

// BaseScores 区域池基准分
type BaseScores struct {
	Clarity int `json:"clarity"`
	Geo     int `json:"geo"`
	Schema  int `json:"schema"`
	UGC     int `json:"ugc"`
}

// RegionPoolEntry 区域共享的匿名基准
type RegionPoolEntry struct {
	RegionKey  string     `json:"region_key"`
	BaseScores BaseScores `json:"base_scores"`
	StoredAt   time.Time  `json:"stored_at"`
}

// ConfidenceFor 由来源推导置信度
func ConfidenceFor(meta Metadata) Confidence {
	switch {
	case meta.Real:
		return ConfidenceHigh
	case meta.Pooled:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// ClampScore 将分数限制在 [0,100]
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
