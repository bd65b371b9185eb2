package research

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/mikeboe/deep-research/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		LLMProvider:          "ollama",
		OllamaURL:            "http://localhost:11434",
		PlannerModel:         "planner-model",
		WorkerModel:          "worker-model",
		SearchProviders:      []string{"searxng"},
		MaxContextLength:     4096,
		MaxIterations:        5,
		MinIterations:        2,
		MaxContentForSummary: 8000,
		MaxScrapeLength:      50000,
		EnableTranslation:    true,
		WorkingLanguage:      "en",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type llmCall struct {
	Prompt      string
	Model       string
	Temperature float64
}

// scriptedLLM answers by prompt kind so a single fake can serve a whole run.
type scriptedLLM struct {
	plan      func() (string, error)
	summarize func(prompt string) (string, error)
	review    func() (string, error)
	write     func() (string, error)

	calls []llmCall
}

func (s *scriptedLLM) Generate(_ context.Context, prompt, model string, temperature float64) (string, error) {
	s.calls = append(s.calls, llmCall{Prompt: prompt, Model: model, Temperature: temperature})

	switch {
	case strings.HasPrefix(prompt, "You are a research planner"):
		return call(s.plan)
	case strings.HasPrefix(prompt, "Summarize the following"):
		if s.summarize == nil {
			return "Summary of content", nil
		}
		return s.summarize(prompt)
	case strings.HasPrefix(prompt, "Evaluate if"):
		return call(s.review)
	case strings.HasPrefix(prompt, "Write a comprehensive"):
		return call(s.write)
	}
	return "", errors.New("unexpected prompt")
}

func (s *scriptedLLM) callsFor(prefix string) []llmCall {
	var out []llmCall
	for _, c := range s.calls {
		if strings.HasPrefix(c.Prompt, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func call(fn func() (string, error)) (string, error) {
	if fn == nil {
		return "", errors.New("not scripted")
	}
	return fn()
}

func returns(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}

func sequence(responses ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		r := responses[min(i, len(responses)-1)]
		i++
		return r, nil
	}
}

func fails(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

type searchCall struct {
	Query string
	Limit int
}

type fakeSearch struct {
	results func(query string) ([]SearchResult, error)
	calls   []searchCall
}

func (f *fakeSearch) Search(_ context.Context, query string, limit int) ([]SearchResult, error) {
	f.calls = append(f.calls, searchCall{Query: query, Limit: limit})
	if f.results == nil {
		return nil, nil
	}
	return f.results(query)
}

func resultsFor(urls ...string) []SearchResult {
	out := make([]SearchResult, len(urls))
	for i, u := range urls {
		out[i] = SearchResult{Title: "Result", URL: u}
	}
	return out
}

type fakeFetcher struct {
	pages   map[string]FetchResult
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) FetchResult {
	f.fetched = append(f.fetched, url)
	if res, ok := f.pages[url]; ok {
		res.URL = url
		return res
	}
	return FetchResult{URL: url, Success: false, Error: "not found"}
}

type fakeTranslator struct {
	detected     string
	detectErr    error
	translate    func(text, source, target string) (string, error)
	translations []string
}

func (f *fakeTranslator) Detect(string) (string, error) {
	return f.detected, f.detectErr
}

func (f *fakeTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	f.translations = append(f.translations, source+"->"+target)
	if f.translate == nil {
		return "", errors.New("translation unavailable")
	}
	return f.translate(text, source, target)
}
