package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/research"
)

func fetcherConfig() *config.Config {
	return &config.Config{FetchTimeout: time.Second, MaxScrapeLength: 50000}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://example.com/page", true},
		{"http://example.com", true},
		{"ftp://example.com/file", false},
		{"example.com", false},
		{"https://", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidURL)
			assert.ErrorIs(t, err, research.ErrInvalidInput)
		})
	}
}

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><head><title>T</title></head><body><h1>Hello</h1>\n\n<p>Research   world</p></body></html>")
	}))
	defer srv.Close()

	res := NewFetcher(fetcherConfig()).Fetch(context.Background(), srv.URL)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, srv.URL, res.URL)
	assert.Contains(t, res.Content, "Hello")
	assert.Contains(t, res.Content, "Research world")
	assert.NotContains(t, res.Content, "\n")
}

func TestFetchPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "  just text  \n")
	}))
	defer srv.Close()

	res := NewFetcher(fetcherConfig()).Fetch(context.Background(), srv.URL)

	require.True(t, res.Success)
	assert.Equal(t, "just text", res.Content)
}

func TestFetchTruncatesLongContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, strings.Repeat("a", 100))
	}))
	defer srv.Close()

	cfg := fetcherConfig()
	cfg.MaxScrapeLength = 10
	res := NewFetcher(cfg).Fetch(context.Background(), srv.URL)

	require.True(t, res.Success)
	assert.Equal(t, strings.Repeat("a", 10)+"\n\n[Content truncated]", res.Content)
}

func TestFetchFailuresAreReported(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	binary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 0x50})
	}))
	defer binary.Close()

	cfg := fetcherConfig()
	cfg.FetchTimeout = 20 * time.Millisecond

	tests := []struct {
		name    string
		url     string
		message string
	}{
		{"Invalid URL", "not a url", "invalid input"},
		{"Not found", notFound.URL, "HTTP 404"},
		{"Timeout", slow.URL, "timeout"},
		{"Unsupported type", binary.URL, "unsupported content type"},
		{"PDF without OCR", pdfServer(t), "MISTRAL_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewFetcher(cfg).Fetch(context.Background(), tt.url)

			assert.False(t, res.Success)
			assert.Empty(t, res.Content)
			assert.Equal(t, tt.url, res.URL)
			assert.Contains(t, res.Error, tt.message)
		})
	}
}

func pdfServer(t *testing.T) string {
	url, _ := countingPDFServer(t)
	return url + "/paper.pdf"
}

// countingPDFServer serves a PDF at every path and counts the requests.
func countingPDFServer(t *testing.T) (string, *atomic.Int32) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	t.Cleanup(srv.Close)
	return srv.URL, &hits
}

func newOCRServer(t *testing.T, gotDocument *string) string {
	ocr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body struct {
			Document struct {
				URL string `json:"document_url"`
			} `json:"document"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*gotDocument = body.Document.URL
		fmt.Fprint(w, `{"pages": [{"index": 0, "markdown": "# Abstract"}, {"index": 1, "markdown": "Body"}]}`)
	}))
	t.Cleanup(ocr.Close)
	return ocr.URL
}

func TestFetchPDFThroughOCR(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantGets int32
	}{
		{"PDF path goes straight to OCR", "/paper.pdf", 0},
		{"PDF content type", "/download?id=7", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, hits := countingPDFServer(t)
			var gotDocument string
			ocrURL := newOCRServer(t, &gotDocument)

			cfg := fetcherConfig()
			cfg.MistralApiKey = "secret"
			f := NewFetcher(cfg)
			f.ocr.baseURL = ocrURL

			res := f.Fetch(context.Background(), base+tt.path)

			require.True(t, res.Success, res.Error)
			assert.True(t, strings.HasSuffix(gotDocument, tt.path))
			assert.Equal(t, "- Page 0 -\n# Abstract\n\n- Page 1 -\nBody", res.Content)
			assert.Equal(t, tt.wantGets, hits.Load())
		})
	}
}

func TestFetchHTMLBehindLargeHead(t *testing.T) {
	script := strings.Repeat("var x = 1;\n", 24000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><head><script>%s</script></head><body><p>Important finding</p></body></html>", script)
	}))
	defer srv.Close()

	res := NewFetcher(fetcherConfig()).Fetch(context.Background(), srv.URL)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Important finding", res.Content)
}

func TestFetchMarksBodyCutAtByteLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body><p>Important finding</p><!-- %s --><p>Lost</p></body></html>", strings.Repeat("x", 10000))
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig())
	f.maxBytes = 2048

	res := f.Fetch(context.Background(), srv.URL)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Important finding\n\n[Content truncated]", res.Content)
}

func TestFetchAllIsOrdered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, r.URL.Path)
	}))
	defer srv.Close()

	results := NewFetcher(fetcherConfig()).FetchAll(context.Background(), []string{srv.URL + "/a", "bad", srv.URL + "/b"})

	require.Len(t, results, 3)
	assert.Equal(t, "/a", results[0].Content)
	assert.False(t, results[1].Success)
	assert.Equal(t, "/b", results[2].Content)
}
