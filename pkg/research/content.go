package research

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/splitter"
)

const summarizerTemperature = 0.3

// ContentStage fetches every reference not yet scraped and summarizes it.
// URLs are processed one at a time.
type ContentStage struct {
	fetcher  PageFetcher
	llm      LanguageModel
	model    string
	maxChars int
	splitter *splitter.TextSplitter
	logger   *slog.Logger
}

func NewContentStage(fetcher PageFetcher, llm LanguageModel, cfg *config.Config, logger *slog.Logger) *ContentStage {
	return &ContentStage{
		fetcher:  fetcher,
		llm:      llm,
		model:    cfg.WorkerModel,
		maxChars: cfg.MaxContentForSummary,
		splitter: splitter.NewRecursiveCharacterTextSplitter(cfg.MaxContentForSummary, 0),
		logger:   logger,
	}
}

func (c *ContentStage) Run(ctx context.Context, state ResearchState) (Update, error) {
	pending := pendingURLs(state)
	if len(pending) == 0 {
		return Update{}, nil
	}

	summaries := []string{}
	scraped := make([]string, 0, len(pending))

	for _, url := range pending {
		scraped = append(scraped, url)

		res := c.fetcher.Fetch(ctx, url)
		if !res.Success {
			c.logger.Warn("Failed to fetch source", "url", url, "error", res.Error)
			continue
		}
		if strings.TrimSpace(res.Content) == "" {
			c.logger.Warn("Fetched source has no text", "url", url)
			continue
		}

		text := c.capContent(res.Content)
		summary, err := c.llm.Generate(ctx, formatSummarizerPrompt(text, summaryMaxWords), c.model, summarizerTemperature)
		if err != nil {
			c.logger.Warn("Failed to summarize source", "url", url, "error", err)
			continue
		}
		if strings.TrimSpace(summary) == "" {
			c.logger.Warn("Summarizer returned no text", "url", url)
			continue
		}

		summaries = append(summaries, tagSummary(url, summary))
		c.logger.Info("Summarized source", "url", url, "chars", utf8.RuneCountInString(text))
	}

	return Update{
		FieldContent:     summaries,
		FieldScrapedURLs: scraped,
	}, nil
}

// capContent bounds text to maxChars runes, preferring a paragraph or word
// boundary when the splitter can find one.
func (c *ContentStage) capContent(text string) string {
	if utf8.RuneCountInString(text) <= c.maxChars {
		return text
	}

	head := c.splitter.Head(text)
	if head == "" {
		head = text
	}
	if runes := []rune(head); len(runes) > c.maxChars {
		head = string(runes[:c.maxChars])
	}
	return head
}
