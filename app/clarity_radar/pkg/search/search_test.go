package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseHosts(t *testing.T) {
	resp := &Response{Results: []Result{
		{URL: "https://www.yelp.com/biz/example-dealer"},
		{URL: "https://yelp.com/other"},
		{URL: "not a url"},
		{URL: "https://maps.google.com/?q=x"},
	}}
	assert.Equal(t, []string{"yelp.com", "maps.google.com"}, resp.Hosts())
	assert.Nil(t, (*Response)(nil).Hosts())
}
