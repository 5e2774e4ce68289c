package signal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"
)

const maxPageBytes = 5 << 20

// HomePageURL 默认的主页地址
func HomePageURL(subject string) string {
	return "https://" + subject + "/"
}

// page 抓取到的主页
type page struct {
	url     *url.URL
	body    []byte
	header  http.Header
	elapsed time.Duration
}

// pageFetcher 供 schema、performance、freshness 三个信号源共用，
// 同一主体并发的抓取合并为一次请求
type pageFetcher struct {
	client *http.Client
	urlFor func(subject string) string
	group  singleflight.Group
}

func newPageFetcher(client *http.Client, urlFor func(string) string) *pageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if urlFor == nil {
		urlFor = HomePageURL
	}
	return &pageFetcher{client: client, urlFor: urlFor}
}

func (f *pageFetcher) fetch(ctx context.Context, subject string) (*page, error) {
	v, err, _ := f.group.Do(subject, func() (any, error) {
		return f.get(ctx, subject)
	})
	if err != nil {
		return nil, err
	}
	return v.(*page), nil
}

func (f *pageFetcher) get(ctx context.Context, subject string) (*page, error) {
	target := f.urlFor(subject)
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ClarityRadar/1.0)")

	start := time.Now()
	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	elapsed := time.Since(start)

	if res.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("page returned status %d", res.StatusCode)
	}

	return &page{url: res.Request.URL, body: body, header: res.Header, elapsed: elapsed}, nil
}
