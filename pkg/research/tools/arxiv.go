package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mikeboe/deep-research/pkg/research"
)

const arxivAPIURL = "https://export.arxiv.org/api/query"

// ArxivEntry struct to hold arXiv entry data
type ArxivEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Summary   string      `xml:"summary"`
	Published string      `xml:"published"`
	Link      []ArxivLink `xml:"link"`
}

// ArxivLink struct to hold arXiv link data
type ArxivLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

// ArxivFeed struct to hold the entire arXiv feed
type ArxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entry   []ArxivEntry `xml:"entry"`
}

// ArxivClient searches the arXiv export API. Results point at the PDF so the
// fetcher can hand them to OCR.
type ArxivClient struct {
	apiURL string
	client *http.Client
}

func NewArxivClient(timeout time.Duration) *ArxivClient {
	return &ArxivClient{apiURL: arxivAPIURL, client: &http.Client{Timeout: timeout}}
}

func (a *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]research.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", research.ErrInvalidInput)
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Add("search_query", "all:"+query)
	params.Add("max_results", strconv.Itoa(maxResults))
	params.Add("start", "0")
	apiURL := a.apiURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &SearchError{Provider: "arxiv", Query: query, Err: err}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &SearchError{Provider: "arxiv", Query: query, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("API returned non-200 status code", "status", resp.StatusCode, "body", string(bodyBytes))
		return nil, &SearchError{Provider: "arxiv", Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("body: %s", string(bodyBytes))}
	}

	var feed ArxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, &SearchError{Provider: "arxiv", Query: query, Err: fmt.Errorf("failed to unmarshal XML: %w", err)}
	}

	results := make([]research.SearchResult, 0, len(feed.Entry))
	for _, entry := range feed.Entry {
		link := entry.pdfLink()
		if link == "" {
			continue
		}
		results = append(results, research.SearchResult{
			Title:   strings.Join(strings.Fields(entry.Title), " "),
			URL:     link,
			Snippet: strings.TrimSpace(entry.Summary),
			Engine:  "arxiv",
		})
	}

	slog.Debug("arxiv search finished", "query", query, "results", len(results))
	return results, nil
}

func (e ArxivEntry) pdfLink() string {
	for _, link := range e.Link {
		if link.Type == "application/pdf" {
			return link.Href
		}
	}
	return e.ID
}
