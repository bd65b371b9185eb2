package research

import "context"

// SearchResult represents a single search result
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Engine  string `json:"engine,omitempty"`
}

// FetchResult is the outcome of fetching one page. Failures are reported in
// the value, never as an error.
type FetchResult struct {
	URL     string `json:"url"`
	Content string `json:"content"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// LanguageModel generates text for a prompt.
type LanguageModel interface {
	Generate(ctx context.Context, prompt, model string, temperature float64) (string, error)
}

// JSONModel is implemented by models that can be asked to answer with a JSON
// object. Stages that expect JSON use it when available.
type JSONModel interface {
	LanguageModel
	GenerateJSON(ctx context.Context, prompt, model string, temperature float64) (string, error)
}

type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

type PageFetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// Translator detects languages and translates between them.
type Translator interface {
	Detect(text string) (string, error)
	Translate(ctx context.Context, text, source, target string) (string, error)
}

func generateJSON(ctx context.Context, llm LanguageModel, prompt, model string, temperature float64) (string, error) {
	if jm, ok := llm.(JSONModel); ok {
		return jm.GenerateJSON(ctx, prompt, model, temperature)
	}
	return llm.Generate(ctx, prompt, model, temperature)
}
