package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is
      All You Need</title>
    <summary> The dominant sequence transduction models... </summary>
    <published>2017-06-12T17:57:34Z</published>
    <link href="http://arxiv.org/abs/1706.03762v7" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v7" rel="related" type="application/pdf"/>
  </entry>
</feed>`

func TestArxivSearch(t *testing.T) {
	var gotQuery, gotMax string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		gotMax = r.URL.Query().Get("max_results")
		fmt.Fprint(w, arxivFeed)
	}))
	defer srv.Close()

	client := NewArxivClient(time.Second)
	client.apiURL = srv.URL

	results, err := client.Search(context.Background(), "transformers", 10)

	require.NoError(t, err)
	assert.Equal(t, "all:transformers", gotQuery)
	assert.Equal(t, "10", gotMax)
	require.Len(t, results, 1)
	assert.Equal(t, "Attention Is All You Need", results[0].Title)
	assert.Equal(t, "http://arxiv.org/pdf/1706.03762v7", results[0].URL)
	assert.Equal(t, "The dominant sequence transduction models...", results[0].Snippet)
	assert.Equal(t, "arxiv", results[0].Engine)
}

func TestArxivSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewArxivClient(time.Second)
	client.apiURL = srv.URL

	_, err := client.Search(context.Background(), "transformers", 10)

	var se *SearchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
}
