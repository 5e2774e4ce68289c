package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Redis       RedisConfig       `yaml:"redis"`
	DB          DBConfig          `yaml:"db"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Server      ServerConfig      `yaml:"server"`
	Engine      EngineConfig      `yaml:"engine"`
	Pricing     PricingConfig     `yaml:"pricing"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// RedisConfig 缓存配置，URL 为空时不启用缓存
type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// DBConfig 数据库相关配置，Host 为空时不记录遥测到数据库
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// ServerConfig 服务监听配置
type ServerConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	GRPC GRPCConfig `yaml:"grpc"`
}

type HTTPConfig struct {
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

type GRPCConfig struct {
	Addr string `yaml:"addr"`
}

// EngineConfig 编排引擎配置
type EngineConfig struct {
	// RealQueryRate 未命中缓存的请求中走真实分析的概率
	RealQueryRate float64 `yaml:"real_query_rate"`
	// RealBlendWeight 混合时真实结果所占权重，合成结果占 1-RealBlendWeight
	RealBlendWeight      float64 `yaml:"real_blend_weight"`
	SubscriptionCost     float64 `yaml:"subscription_cost"`
	SignalTimeoutSeconds int     `yaml:"signal_timeout_seconds"`
	RealTimeoutSeconds   int     `yaml:"real_timeout_seconds"`
	WriteTimeoutSeconds  int     `yaml:"write_timeout_seconds"`
	DedupeInflight       bool    `yaml:"dedupe_inflight"`
}

// PricingConfig 真实分析计费配置
type PricingConfig struct {
	PerCallUSD    float64 `yaml:"per_call_usd"`
	InputPerMTok  float64 `yaml:"input_per_mtok"`
	OutputPerMTok float64 `yaml:"output_per_mtok"`
}

const (
	DefaultRealQueryRate    = 0.05
	DefaultRealBlendWeight  = 0.10
	DefaultSubscriptionCost = 499
	DefaultPerCallUSD       = 0.015
	DefaultCachePrefix      = "dai"
)

// SignalTimeout 单个免费信号源的超时
func (c EngineConfig) SignalTimeout() time.Duration {
	return time.Duration(c.SignalTimeoutSeconds) * time.Second
}

// RealTimeout 真实分析调用的超时
func (c EngineConfig) RealTimeout() time.Duration {
	return time.Duration(c.RealTimeoutSeconds) * time.Second
}

// WriteTimeout 后台缓存与遥测写入的超时
func (c EngineConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// 预置默认值，yaml 中显式写出的 0 会覆盖它
	cfg := Config{Engine: EngineConfig{RealQueryRate: DefaultRealQueryRate}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults 为未设置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = DefaultCachePrefix
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Server.HTTP.Addr == "" {
		c.Server.HTTP.Addr = "0.0.0.0:8000"
	}
	if c.Server.GRPC.Addr == "" {
		c.Server.GRPC.Addr = "0.0.0.0:9000"
	}

	e := &c.Engine
	// 0 表示关闭真实分析；未写该字段时由 LoadConfig 预置默认值
	if e.RealQueryRate < 0 || e.RealQueryRate > 1 {
		e.RealQueryRate = DefaultRealQueryRate
	}
	if e.RealBlendWeight <= 0 || e.RealBlendWeight > 1 {
		e.RealBlendWeight = DefaultRealBlendWeight
	}
	if e.SubscriptionCost <= 0 {
		e.SubscriptionCost = DefaultSubscriptionCost
	}
	if e.SignalTimeoutSeconds <= 0 {
		e.SignalTimeoutSeconds = 5
	}
	if e.RealTimeoutSeconds <= 0 {
		e.RealTimeoutSeconds = 30
	}
	if e.WriteTimeoutSeconds <= 0 {
		e.WriteTimeoutSeconds = 3
	}

	if c.Pricing.PerCallUSD <= 0 {
		c.Pricing.PerCallUSD = DefaultPerCallUSD
	}
}
