package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tmc/langchaingo/documentloaders"

	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/research"
)

const (
	truncationMarker = "\n\n[Content truncated]"
	userAgent        = "Mozilla/5.0 (compatible; deep-research/1.0)"

	// bytesPerTextChar bounds the raw body read for a page relative to
	// MaxScrapeLength. Markup, scripts and styles dwarf the extracted text.
	bytesPerTextChar = 64
)

// Fetcher downloads pages and reduces them to plain text. It never returns an
// error; failures are described in the FetchResult.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxLength int
	maxBytes  int64
	ocr       *OCRClient
}

func NewFetcher(cfg *config.Config) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		timeout:   cfg.FetchTimeout,
		maxLength: cfg.MaxScrapeLength,
		maxBytes:  int64(cfg.MaxScrapeLength) * bytesPerTextChar,
	}
	if cfg.MistralApiKey != "" {
		f.ocr = NewOCRClient(cfg.MistralApiKey, cfg.FetchTimeout)
	}
	return f
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) research.FetchResult {
	content, capped, err := f.fetch(ctx, rawURL)
	if err != nil {
		slog.Debug("fetch failed", "url", rawURL, "error", err)
		return research.FetchResult{URL: rawURL, Success: false, Error: err.Error()}
	}
	return research.FetchResult{URL: rawURL, Content: f.truncate(content, capped), Success: true}
}

// FetchAll fetches urls one after another, in order.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []research.FetchResult {
	results := make([]research.FetchResult, 0, len(urls))
	for _, u := range urls {
		results = append(results, f.Fetch(ctx, u))
	}
	return results
}

// fetch returns the page text and whether the raw body was cut at maxBytes.
func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, bool, error) {
	if err := ValidateURL(rawURL); err != nil {
		return "", false, err
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if isPDFPath(rawURL) {
		text, err := f.extractPDF(ctx, rawURL)
		return text, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", false, fmt.Errorf("timeout after %s", f.timeout)
		}
		return "", false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", false, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/pdf":
		resp.Body.Close()
		text, err := f.extractPDF(ctx, rawURL)
		return text, false, err
	case mediaType == "" || mediaType == "text/html" || mediaType == "application/xhtml+xml":
		raw, capped, err := f.readBody(resp.Body)
		if err != nil {
			return "", false, err
		}
		docs, err := documentloaders.NewHTML(bytes.NewReader(raw)).Load(ctx)
		if err != nil {
			return "", false, fmt.Errorf("failed to parse HTML: %w", err)
		}
		var parts []string
		for _, d := range docs {
			parts = append(parts, d.PageContent)
		}
		return normalizeText(strings.Join(parts, " ")), capped, nil
	case strings.HasPrefix(mediaType, "text/"):
		raw, capped, err := f.readBody(resp.Body)
		if err != nil {
			return "", false, err
		}
		return strings.TrimSpace(string(raw)), capped, nil
	default:
		return "", false, fmt.Errorf("unsupported content type %q", mediaType)
	}
}

func (f *Fetcher) extractPDF(ctx context.Context, rawURL string) (string, error) {
	if f.ocr == nil {
		return "", errors.New("PDF content requires MISTRAL_API_KEY")
	}
	return f.ocr.Extract(ctx, rawURL)
}

// readBody reads at most maxBytes and reports whether more was available.
func (f *Fetcher) readBody(body io.Reader) ([]byte, bool, error) {
	if f.maxBytes <= 0 {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read response body: %w", err)
		}
		return raw, false, nil
	}

	raw, err := io.ReadAll(io.LimitReader(body, f.maxBytes+1))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(raw)) > f.maxBytes {
		return raw[:f.maxBytes], true, nil
	}
	return raw, false, nil
}

// truncate applies the character ceiling to extracted text. Text from a body
// cut short is marked even when it fits.
func (f *Fetcher) truncate(content string, capped bool) string {
	runes := []rune(content)
	if f.maxLength > 0 && len(runes) > f.maxLength {
		return string(runes[:f.maxLength]) + truncationMarker
	}
	if capped {
		return content + truncationMarker
	}
	return content
}

func isPDFPath(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
