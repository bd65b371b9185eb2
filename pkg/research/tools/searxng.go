package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikeboe/deep-research/pkg/research"
)

type searxngResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Engine  string `json:"engine"`
}

type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

// SearxngClient queries a SearXNG instance through its JSON API.
type SearxngClient struct {
	baseURL string
	client  *http.Client
}

func NewSearxngClient(baseURL string, timeout time.Duration) *SearxngClient {
	return &SearxngClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *SearxngClient) Search(ctx context.Context, query string, limit int) ([]research.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", research.ErrInvalidInput)
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	apiURL := s.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &SearchError{Provider: "searxng", Query: query, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SearchError{Provider: "searxng", Query: query, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &SearchError{
			Provider:   "searxng",
			Query:      query,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("body: %s", strings.TrimSpace(string(body))),
		}
	}

	var decoded searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &SearchError{Provider: "searxng", Query: query, Timeout: isTimeout(err), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	results := make([]research.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, research.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Engine:  r.Engine,
		})
		if limit > 0 && len(results) == limit {
			break
		}
	}

	slog.Debug("searxng search finished", "query", query, "results", len(results))
	return results, nil
}
