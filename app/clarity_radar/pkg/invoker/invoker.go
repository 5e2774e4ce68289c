package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/logger"
	dm "github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

// ErrRealAnalysis 真实分析失败，调用方应按未调用处理
var ErrRealAnalysis = errors.New("real analysis failed")

const maxRetries = 3

// LLMInvoker 通过 LLM 完成一次计费的真实分析
type LLMInvoker struct {
	chatModel model.BaseChatModel
	limiter   *rate.Limiter
	pricing   config.PricingConfig
	timeout   time.Duration
	baseDelay time.Duration
}

// NewChatModel 按配置初始化 openai 兼容的对话模型
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.BaseChatModel, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return chatModel, nil
}

// NewLimiter 由并发配置得到限流器
func NewLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), cfg.QPS)
}

// NewLLMInvoker 创建真实分析调用器
func NewLLMInvoker(cm model.BaseChatModel, limiter *rate.Limiter, pricing config.PricingConfig, timeout time.Duration) *LLMInvoker {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &LLMInvoker{
		chatModel: cm,
		limiter:   limiter,
		pricing:   pricing,
		timeout:   timeout,
		baseDelay: 2 * time.Second,
	}
}

type llmResult struct {
	ClarityScore   *float64           `json:"clarity_score"`
	PlatformScores map[string]float64 `json:"platform_scores"`
}

const prompt = `你是一名 AI 搜索可见度分析师。请评估网站【%s】在主流 AI 助手中的可见度。
请务必严格按照以下 JSON 格式返回，不要包含任何 markdown 标记：
{
	"clarity_score": 75,
	"platform_scores": {"chatgpt": 70, "claude": 72, "perplexity": 68, "gemini": 71, "copilot": 66}
}
所有分数均为 0-100 的整数，代表该网站被对应平台准确引用和推荐的可能性。`

// Analyze 失败时返回包装了 ErrRealAnalysis 的错误，不返回部分结果
func (v *LLMInvoker) Analyze(ctx context.Context, subject string) (*dm.RealResult, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	messages := []*schema.Message{
		schema.SystemMessage("你是一个 JSON 生成器。请只输出 JSON 字符串。"),
		schema.UserMessage(fmt.Sprintf(prompt, subject)),
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := v.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRealAnalysis, err)
		}

		resp, err := v.chatModel.Generate(ctx, messages)
		if err != nil {
			if isRateLimited(err) && i < maxRetries {
				lastErr = err
				logger.Log.Warnf("LLM 限流，第 %d 次重试 [%s]", i+1, subject)
				if err := sleep(ctx, v.baseDelay*time.Duration(1<<i)); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrRealAnalysis, err)
				}
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrRealAnalysis, err)
		}

		partial, err := parse(resp.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRealAnalysis, err)
		}
		return &dm.RealResult{Partial: *partial, CostUSD: v.cost(resp)}, nil
	}
	return nil, fmt.Errorf("%w: failed after retries: %v", ErrRealAnalysis, lastErr)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "too many requests")
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parse(content string) (*dm.PartialRealResult, error) {
	clean := strings.TrimSpace(content)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")

	var r llmResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(clean)), &r); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	out := &dm.PartialRealResult{}
	if r.ClarityScore != nil {
		v := score(*r.ClarityScore)
		out.ClarityScore = &v
	}
	for _, p := range dm.Platforms {
		if s, ok := r.PlatformScores[string(p)]; ok {
			if out.PlatformScores == nil {
				out.PlatformScores = make(map[dm.Platform]int)
			}
			out.PlatformScores[p] = score(s)
		}
	}
	if out.ClarityScore == nil && len(out.PlatformScores) == 0 {
		return nil, errors.New("empty result")
	}
	return out, nil
}

func score(v float64) int {
	return dm.ClampScore(int(math.Round(v)))
}

// cost 有 token 用量且配置了单价时按用量计费，否则按次计费
func (v *LLMInvoker) cost(resp *schema.Message) float64 {
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil &&
		(v.pricing.InputPerMTok > 0 || v.pricing.OutputPerMTok > 0) {
		u := resp.ResponseMeta.Usage
		return float64(u.PromptTokens)/1e6*v.pricing.InputPerMTok +
			float64(u.CompletionTokens)/1e6*v.pricing.OutputPerMTok
	}
	return v.pricing.PerCallUSD
}
