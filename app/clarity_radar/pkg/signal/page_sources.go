package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// ExpectedSchemaTypes 结构化数据覆盖率的参考类型
var ExpectedSchemaTypes = []string{
	"AutoDealer",
	"LocalBusiness",
	"Organization",
	"FAQPage",
	"Vehicle",
	"Offer",
	"BreadcrumbList",
	"WebSite",
}

// SchemaSource 主页 JSON-LD 覆盖率（schema 支柱）
type SchemaSource struct {
	fetcher *pageFetcher
}

// NewSchemaSource client 与 urlFor 为 nil 时使用默认值
func NewSchemaSource(client *http.Client, urlFor func(string) string) *SchemaSource {
	return &SchemaSource{fetcher: newPageFetcher(client, urlFor)}
}

func (s *SchemaSource) Pillar() Pillar { return PillarSchema }

func (s *SchemaSource) Measure(ctx context.Context, subject string) (int, error) {
	p, err := s.fetcher.fetch(ctx, subject)
	if err != nil {
		return 0, err
	}
	return schemaScore(p.body), nil
}

func schemaScore(body []byte) int {
	blocks := extractJSONLD(body)
	if len(blocks) == 0 {
		return 10
	}

	found := make(map[string]bool)
	for _, raw := range blocks {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		collectTypes(doc, found)
	}

	matched := 0
	for _, t := range ExpectedSchemaTypes {
		if found[t] {
			matched++
		}
	}
	coverage := float64(matched) / float64(len(ExpectedSchemaTypes))
	return int(math.Round(20 + 80*coverage))
}

// extractJSONLD 找出所有 <script type="application/ld+json"> 的内容
func extractJSONLD(body []byte) [][]byte {
	var blocks [][]byte
	z := html.NewTokenizer(bytes.NewReader(body))
	inLD := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return blocks
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "type" && strings.EqualFold(strings.TrimSpace(string(val)), "application/ld+json") {
					inLD = true
				}
				if !more {
					break
				}
			}
		case html.TextToken:
			if inLD {
				blocks = append(blocks, bytes.Clone(z.Text()))
			}
		case html.EndTagToken:
			inLD = false
		}
	}
}

func collectTypes(v any, found map[string]bool) {
	switch t := v.(type) {
	case map[string]any:
		switch typ := t["@type"].(type) {
		case string:
			found[typ] = true
		case []any:
			for _, x := range typ {
				if s, ok := x.(string); ok {
					found[s] = true
				}
			}
		}
		for k, child := range t {
			if k == "@type" {
				continue
			}
			collectTypes(child, found)
		}
	case []any:
		for _, child := range t {
			collectTypes(child, found)
		}
	}
}

// PerformanceSource 主页加载耗时与体积（performance 支柱）
type PerformanceSource struct {
	fetcher *pageFetcher
	// FastThreshold 以内不扣分
	FastThreshold time.Duration
	// PenaltyStep 超出部分每多少时间扣 1 分
	PenaltyStep time.Duration
}

// NewPerformanceSource client 与 urlFor 为 nil 时使用默认值
func NewPerformanceSource(client *http.Client, urlFor func(string) string) *PerformanceSource {
	return &PerformanceSource{
		fetcher:       newPageFetcher(client, urlFor),
		FastThreshold: 800 * time.Millisecond,
		PenaltyStep:   50 * time.Millisecond,
	}
}

func (s *PerformanceSource) Pillar() Pillar { return PillarPerformance }

func (s *PerformanceSource) Measure(ctx context.Context, subject string) (int, error) {
	p, err := s.fetcher.fetch(ctx, subject)
	if err != nil {
		return 0, err
	}

	score := 100
	if over := p.elapsed - s.FastThreshold; over > 0 && s.PenaltyStep > 0 {
		score -= int(over / s.PenaltyStep)
	}
	// 超过 2MB 的页面每 MB 扣 5 分
	if mb := len(p.body) >> 20; mb > 2 {
		score -= (mb - 2) * 5
	}
	return max(score, 0), nil
}

// FreshnessSource 内容新鲜度（freshness 支柱）
type FreshnessSource struct {
	fetcher *pageFetcher
	now     func() time.Time
}

// NewPageSources 三个主页信号源共用一个抓取器，每次分析只请求一次主页
func NewPageSources(client *http.Client, urlFor func(string) string) []Source {
	f := newPageFetcher(client, urlFor)
	perf := NewPerformanceSource(client, urlFor)
	perf.fetcher = f
	return []Source{
		&SchemaSource{fetcher: f},
		perf,
		&FreshnessSource{fetcher: f, now: time.Now},
	}
}

// NewFreshnessSource client 与 urlFor 为 nil 时使用默认值
func NewFreshnessSource(client *http.Client, urlFor func(string) string) *FreshnessSource {
	return &FreshnessSource{fetcher: newPageFetcher(client, urlFor), now: time.Now}
}

func (s *FreshnessSource) Pillar() Pillar { return PillarFreshness }

// Measure 一周内更新为满分，一年未更新为 0
func (s *FreshnessSource) Measure(ctx context.Context, subject string) (int, error) {
	p, err := s.fetcher.fetch(ctx, subject)
	if err != nil {
		return 0, err
	}

	updated, ok := lastUpdated(p)
	if !ok {
		return 0, ErrNoSignal
	}

	age := s.now().Sub(updated)
	const week, year = 7 * 24 * time.Hour, 365 * 24 * time.Hour
	switch {
	case age <= week:
		return 100, nil
	case age >= year:
		return 0, nil
	}
	return int(math.Round(100 * float64(year-age) / float64(year-week))), nil
}

func lastUpdated(p *page) (time.Time, bool) {
	article, err := readability.FromReader(bytes.NewReader(p.body), p.url)
	if err == nil {
		if article.ModifiedTime != nil {
			return *article.ModifiedTime, true
		}
		if article.PublishedTime != nil {
			return *article.PublishedTime, true
		}
	}
	if lm := p.header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
