package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/search"
)

type fakeSearcher struct {
	resp *search.Response
	err  error
	last *search.Request
}

func (f *fakeSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	f.last = req
	return f.resp, f.err
}

func TestListingSource(t *testing.T) {
	fs := &fakeSearcher{resp: &search.Response{Results: []search.Result{
		{URL: "https://www.yelp.com/biz/example-dealer"},
		{URL: "https://www.facebook.com/exampledealer"},
		{URL: "https://blog.example.org/post"},
	}}}
	score, err := NewListingSource(fs).Measure(context.Background(), "example-dealer.com")
	require.NoError(t, err)
	// 30 + 12*2 + 3*3
	assert.Equal(t, 63, score)
	assert.Equal(t, []string{"example-dealer.com"}, fs.last.ExcludeDomains)
}

func TestListingSource_NoResults(t *testing.T) {
	score, err := NewListingSource(&fakeSearcher{resp: &search.Response{}}).Measure(context.Background(), "x.com")
	require.NoError(t, err)
	assert.Equal(t, 20, score)
}

func TestListingSource_Error(t *testing.T) {
	_, err := NewListingSource(&fakeSearcher{err: errors.New("quota")}).Measure(context.Background(), "x.com")
	assert.Error(t, err)
}

func TestReputationSource(t *testing.T) {
	fs := &fakeSearcher{resp: &search.Response{Results: []search.Result{
		{URL: "https://www.dealerrater.com/dealer/example", Score: 0.9},
		{URL: "https://www.yelp.com/biz/example", Score: 1.7},
		{URL: "https://news.example.org/x", Score: 0.4},
		{URL: "https://www.dealerrater.com/dealer/example/page2", Score: 0.6},
	}}}
	score, err := NewReputationSource(fs).Measure(context.Background(), "example-dealer.com")
	require.NoError(t, err)
	// relevance = (0.9+1+0.4+0.6)/4 = 0.725, 40 + 29 + 5*2
	assert.Equal(t, 79, score)
	assert.Equal(t, "example-dealer.com reviews", fs.last.Query)
}

func TestReputationSource_NoResults(t *testing.T) {
	_, err := NewReputationSource(&fakeSearcher{resp: &search.Response{}}).Measure(context.Background(), "x.com")
	assert.ErrorIs(t, err, ErrNoSignal)
}

func TestDefaultSources(t *testing.T) {
	assert.Len(t, DefaultSources(nil, nil), 3)
	assert.Len(t, DefaultSources(&fakeSearcher{}, nil), 5)
}
