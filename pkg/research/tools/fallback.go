package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/research"
)

// FallbackSearch tries its providers in order and returns the first
// successful answer, even when it is empty.
type FallbackSearch struct {
	providers []research.SearchProvider
}

func NewFallbackSearch(providers ...research.SearchProvider) *FallbackSearch {
	return &FallbackSearch{providers: providers}
}

func (f *FallbackSearch) Search(ctx context.Context, query string, limit int) ([]research.SearchResult, error) {
	var errs []error
	for i, p := range f.providers {
		results, err := p.Search(ctx, query, limit)
		if err == nil {
			return results, nil
		}
		if errors.Is(err, research.ErrInvalidInput) || ctx.Err() != nil {
			return nil, err
		}
		slog.Warn("search provider failed, trying next", "provider", i, "query", query, "error", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no search providers configured")
	}
	return nil, errors.Join(errs...)
}

// NewSearchProvider builds the provider chain named by cfg.SearchProviders.
func NewSearchProvider(cfg *config.Config) (research.SearchProvider, error) {
	var providers []research.SearchProvider
	for _, name := range cfg.SearchProviders {
		switch name {
		case "searxng":
			providers = append(providers, NewSearxngClient(cfg.SearxngURL, cfg.SearchTimeout))
		case "arxiv":
			providers = append(providers, NewArxivClient(cfg.SearchTimeout))
		default:
			return nil, fmt.Errorf("invalid search provider: %s", name)
		}
	}
	if len(providers) == 1 {
		return providers[0], nil
	}
	return NewFallbackSearch(providers...), nil
}
