package signal

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/search"
)

// 常见的商家目录站点
var listingDirectories = []string{
	"google.com",
	"maps.google.com",
	"maps.apple.com",
	"yelp.com",
	"facebook.com",
	"bbb.org",
	"yellowpages.com",
	"cars.com",
}

// 常见的评价站点
var reviewSites = []string{
	"google.com",
	"yelp.com",
	"dealerrater.com",
	"cars.com",
	"edmunds.com",
	"trustpilot.com",
	"facebook.com",
	"bbb.org",
}

// ListingSource 公开商家信息完整度（geo 支柱）
type ListingSource struct {
	searcher search.Searcher
}

// NewListingSource 创建商家信息信号源
func NewListingSource(s search.Searcher) *ListingSource {
	return &ListingSource{searcher: s}
}

func (s *ListingSource) Pillar() Pillar { return PillarGeo }

// Measure 目录站点覆盖越多，得分越高；完全搜不到说明商家信息缺失
func (s *ListingSource) Measure(ctx context.Context, subject string) (int, error) {
	resp, err := s.searcher.Search(ctx, &search.Request{
		Query:          fmt.Sprintf("%q business hours address phone", subject),
		MaxResults:     10,
		ExcludeDomains: []string{subject},
	})
	if err != nil {
		return 0, fmt.Errorf("listing search: %w", err)
	}
	if len(resp.Results) == 0 {
		return 20, nil
	}

	hits := countMatches(resp.Hosts(), listingDirectories)
	results := min(len(resp.Results), 10)
	return min(30+12*hits+3*results, 100), nil
}

// ReputationSource 口碑与信任度（ugc 支柱）
type ReputationSource struct {
	searcher search.Searcher
}

// NewReputationSource 创建口碑信号源
func NewReputationSource(s search.Searcher) *ReputationSource {
	return &ReputationSource{searcher: s}
}

func (s *ReputationSource) Pillar() Pillar { return PillarUGC }

// Measure 结合搜索相关度与评价站点命中数
func (s *ReputationSource) Measure(ctx context.Context, subject string) (int, error) {
	resp, err := s.searcher.Search(ctx, &search.Request{
		Query:      subject + " reviews",
		MaxResults: 10,
	})
	if err != nil {
		return 0, fmt.Errorf("reputation search: %w", err)
	}
	if len(resp.Results) == 0 {
		return 0, ErrNoSignal
	}

	var total float64
	for _, r := range resp.Results {
		// tavily 给 0-1，searxng 可能超过 1
		total += math.Min(math.Max(r.Score, 0), 1)
	}
	relevance := total / float64(len(resp.Results))
	hits := countMatches(resp.Hosts(), reviewSites)

	return int(math.Round(40 + 40*relevance + 5*float64(hits))), nil
}

func countMatches(hosts, sites []string) int {
	n := 0
	for _, site := range sites {
		for _, h := range hosts {
			if h == site || strings.HasSuffix(h, "."+site) {
				n++
				break
			}
		}
	}
	return n
}
