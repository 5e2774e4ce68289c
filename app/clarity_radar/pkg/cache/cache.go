package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/logger"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

const (
	// AnalysisTTL 单个主体的分析结果缓存时间
	AnalysisTTL = 24 * time.Hour
	// PoolTTL 区域池缓存时间
	PoolTTL = 7 * 24 * time.Hour
)

// ErrMiss 键不存在
var ErrMiss = errors.New("cache: miss")

// Backend 外部键值存储
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Entry 带写入时间的缓存条目
type Entry[T any] struct {
	Value    T         `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// Client 缓存客户端，存储不可用时读返回未命中、写只记录日志
type Client struct {
	backend Backend
	prefix  string
	now     func() time.Time
}

// NewClient 创建缓存客户端，backend 为 nil 时所有读取均未命中
func NewClient(backend Backend, prefix string) *Client {
	return &Client{
		backend: backend,
		prefix:  prefix,
		now:     time.Now,
	}
}

// AnalysisKey 主体缓存键
func (c *Client) AnalysisKey(subject string) string {
	return c.prefix + ":analysis:" + subject
}

// PoolKey 区域池缓存键
func (c *Client) PoolKey(region string) string {
	return c.prefix + ":pool:" + region
}

// GetAnalysis 读取主体缓存
func (c *Client) GetAnalysis(ctx context.Context, subject string) (*model.AnalysisResponse, bool) {
	entry, ok := get[model.AnalysisResponse](ctx, c, c.AnalysisKey(subject))
	if !ok {
		return nil, false
	}
	return &entry.Value, true
}

// SetAnalysis 写入主体缓存
func (c *Client) SetAnalysis(ctx context.Context, subject string, resp *model.AnalysisResponse) {
	if resp == nil {
		return
	}
	set(ctx, c, c.AnalysisKey(subject), *resp, AnalysisTTL)
}

// GetPool 读取区域池
func (c *Client) GetPool(ctx context.Context, region string) (*model.RegionPoolEntry, bool) {
	entry, ok := get[model.RegionPoolEntry](ctx, c, c.PoolKey(region))
	if !ok {
		return nil, false
	}
	return &entry.Value, true
}

// SetPool 写入区域池，后写覆盖先写
func (c *Client) SetPool(ctx context.Context, pool *model.RegionPoolEntry) {
	if pool == nil {
		return
	}
	set(ctx, c, c.PoolKey(pool.RegionKey), *pool, PoolTTL)
}

func get[T any](ctx context.Context, c *Client, key string) (*Entry[T], bool) {
	if c == nil || c.backend == nil {
		return nil, false
	}
	raw, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.Log.Warnf("缓存读取失败，按未命中处理 [%s]: %v", key, err)
		}
		return nil, false
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.Log.Warnf("缓存内容无法解析，按未命中处理 [%s]: %v", key, err)
		return nil, false
	}
	return &entry, true
}

func set[T any](ctx context.Context, c *Client, key string, value T, ttl time.Duration) {
	if c == nil || c.backend == nil {
		return
	}
	raw, err := json.Marshal(Entry[T]{Value: value, StoredAt: c.now().UTC()})
	if err != nil {
		logger.Log.Errorf("缓存序列化失败 [%s]: %v", key, err)
		return
	}
	if err := c.backend.Set(ctx, key, raw, ttl); err != nil {
		logger.Log.Warnf("缓存写入失败 [%s]: %v", key, err)
	}
}
