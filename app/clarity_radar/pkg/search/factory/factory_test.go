package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/searxng"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/tavily"
)

func TestNewSearcher(t *testing.T) {
	s, err := NewSearcher(config.SearchConfig{Tavily: config.TavilyConfig{APIKey: "k"}})
	require.NoError(t, err)
	assert.IsType(t, &tavily.Client{}, s)

	s, err = NewSearcher(config.SearchConfig{SearXNG: config.SearXNGConfig{BaseURL: "http://searx.local"}})
	require.NoError(t, err)
	assert.IsType(t, &searxng.Client{}, s)

	_, err = NewSearcher(config.SearchConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewSearcher(config.SearchConfig{Provider: "tavily"})
	assert.Error(t, err)

	_, err = NewSearcher(config.SearchConfig{Provider: "bing"})
	assert.Error(t, err)
}
