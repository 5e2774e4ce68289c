package search

import "context"

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query          string
	Topic          string // "news" or "general"
	MaxResults     int
	IncludeDomains []string
	ExcludeDomains []string
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Title         string
	URL           string
	Content       string
	Score         float64
	PublishedDate string
}

// Hosts 返回结果中出现的主机名（去重，保持顺序）
func (r *Response) Hosts() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.Results))
	var hosts []string
	for _, item := range r.Results {
		h := hostOf(item.URL)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		hosts = append(hosts, h)
	}
	return hosts
}
