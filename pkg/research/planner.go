package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mikeboe/deep-research/pkg/config"
)

const (
	maxPlanAttempts    = 3
	plannerTemperature = 0.7
)

// Planner turns the task into the list of search queries for the run.
type Planner struct {
	llm    LanguageModel
	model  string
	logger *slog.Logger
}

func NewPlanner(llm LanguageModel, cfg *config.Config, logger *slog.Logger) *Planner {
	return &Planner{llm: llm, model: cfg.PlannerModel, logger: logger}
}

func (p *Planner) Run(ctx context.Context, state ResearchState) (Update, error) {
	if strings.TrimSpace(state.Task) == "" {
		return nil, fmt.Errorf("planner: task must not be empty: %w", ErrInvalidInput)
	}

	prompt := formatPlannerPrompt(state.Task)

	var lastErr error
	for attempt := 1; attempt <= maxPlanAttempts; attempt++ {
		raw, err := generateJSON(ctx, p.llm, prompt, p.model, plannerTemperature)
		if err != nil {
			return nil, &PlanningError{Err: fmt.Errorf("language model call failed: %w", err)}
		}

		queries, err := parsePlan(raw)
		if err != nil {
			lastErr = err
			p.logger.Warn("Planner returned unusable output", "attempt", attempt, "max", maxPlanAttempts, "error", err)
			continue
		}

		if len(queries) == 0 {
			p.logger.Info("Planner returned no queries, falling back to the task")
			queries = []string{state.Task}
		}

		p.logger.Info("Generated queries", "queries", queries)
		return Update{FieldPlan: queries}, nil
	}

	return nil, &PlanningError{Attempts: maxPlanAttempts, Err: lastErr}
}

func parsePlan(raw string) ([]string, error) {
	var resp struct {
		Queries *[]string `json:"queries"`
	}
	if err := decodeJSONObject(raw, &resp); err != nil {
		return nil, err
	}
	if resp.Queries == nil {
		return nil, fmt.Errorf("%w: missing \"queries\" field", ErrMalformedResponse)
	}

	queries := make([]string, 0, len(*resp.Queries))
	for _, q := range *resp.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	return queries, nil
}
