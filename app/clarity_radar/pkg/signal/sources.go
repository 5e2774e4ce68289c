package signal

import (
	"net/http"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/search"
)

// DefaultSources 组装全部信号源；searcher 为 nil 时 geo、ugc 两个支柱始终使用默认值
func DefaultSources(searcher search.Searcher, client *http.Client) []Source {
	sources := NewPageSources(client, nil)
	if searcher != nil {
		sources = append(sources, NewListingSource(searcher), NewReputationSource(searcher))
	}
	return sources
}
