package factory

import (
	"errors"
	"fmt"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/search"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/searxng"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/tavily"
)

// ErrNotConfigured 未配置任何搜索服务
var ErrNotConfigured = errors.New("search provider not configured")

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		// 默认回退逻辑：有 tavily key 用 tavily，有 searxng 地址用 searxng
		switch {
		case cfg.Tavily.APIKey != "":
			provider = "tavily"
		case cfg.SearXNG.BaseURL != "":
			provider = "searxng"
		default:
			return nil, ErrNotConfigured
		}
	}

	switch provider {
	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
