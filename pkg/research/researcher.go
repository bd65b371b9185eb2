package research

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// MaxNewReferences caps how many unseen URLs one round may add.
	MaxNewReferences = 5
	searchOverFetch  = 2
)

// Researcher runs the plan entry for the current round and collects new reference URLs.
type Researcher struct {
	search SearchProvider
	logger *slog.Logger
}

func NewResearcher(search SearchProvider, logger *slog.Logger) *Researcher {
	return &Researcher{search: search, logger: logger}
}

func (r *Researcher) Run(ctx context.Context, state ResearchState) (Update, error) {
	if state.StepsCompleted >= len(state.Plan) {
		r.logger.Info("Plan exhausted, nothing to research", "steps_completed", state.StepsCompleted, "plan", len(state.Plan))
		return Update{}, nil
	}

	query := state.Plan[state.StepsCompleted]
	update := Update{
		FieldCurrentSearchQuery: query,
		FieldStepsCompleted:     state.StepsCompleted + 1,
	}

	results, err := r.search.Search(ctx, query, MaxNewReferences*searchOverFetch)
	if err != nil {
		r.logger.Warn("Search failed, continuing without new references", "query", query, "error", err)
		update[FieldReferences] = []string{}
		return update, nil
	}

	refs := selectNewReferences(results, state.References, MaxNewReferences)
	r.logger.Info("Search complete", "query", query, "results", len(results), "new_references", len(refs))

	update[FieldReferences] = refs
	return update, nil
}

// selectNewReferences keeps provider order, skips URLs already known or
// repeated within results, and stops at limit.
func selectNewReferences(results []SearchResult, known []string, limit int) []string {
	seen := make(map[string]bool, len(known)+len(results))
	for _, u := range known {
		seen[u] = true
	}

	refs := []string{}
	for _, res := range results {
		if len(refs) >= limit {
			break
		}
		u := strings.TrimSpace(res.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		refs = append(refs, u)
	}
	return refs
}
