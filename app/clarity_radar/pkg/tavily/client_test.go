package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/search"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "example-dealer.com reviews", req.Query)
		assert.Equal(t, "basic", req.SearchDepth)
		assert.Equal(t, "general", req.Topic)
		assert.Equal(t, 5, req.MaxResults)

		_ = json.NewEncoder(w).Encode(SearchResponse{Results: []SearchResult{
			{Title: "Example Dealer - Yelp", URL: "https://www.yelp.com/biz/example", Score: 0.82},
		}})
	}))
	defer srv.Close()

	c := NewClient("tvly-key", WithEndpoint(srv.URL))
	resp, err := c.Search(context.Background(), &search.Request{Query: "example-dealer.com reviews"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 0.82, resp.Results[0].Score)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("tvly-key", WithEndpoint(srv.URL))
	_, err := c.Search(context.Background(), &search.Request{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
