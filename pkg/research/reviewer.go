package research

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mikeboe/deep-research/pkg/config"
)

const reviewerTemperature = 0.1

// Reviewer decides whether the accumulated content is enough to write the report.
type Reviewer struct {
	llm           LanguageModel
	model         string
	minIterations int
	maxIterations int
	logger        *slog.Logger
}

func NewReviewer(llm LanguageModel, cfg *config.Config, logger *slog.Logger) *Reviewer {
	return &Reviewer{
		llm:           llm,
		model:         cfg.WorkerModel,
		minIterations: cfg.MinIterations,
		maxIterations: cfg.MaxIterations,
		logger:        logger,
	}
}

func (r *Reviewer) Run(ctx context.Context, state ResearchState) (Update, error) {
	steps := state.StepsCompleted

	if steps < r.minIterations {
		r.logger.Info("Below minimum iterations, continuing research", "steps_completed", steps, "min", r.minIterations)
		return Update{FieldIsSufficient: false}, nil
	}
	if steps >= r.maxIterations {
		r.logger.Info("Maximum iterations reached, stopping research", "steps_completed", steps, "max", r.maxIterations)
		return Update{FieldIsSufficient: true}, nil
	}

	raw, err := generateJSON(ctx, r.llm, formatReviewerPrompt(state.Task, state.Content), r.model, reviewerTemperature)
	if err != nil {
		r.logger.Warn("Reviewer model call failed, continuing research", "error", err)
		return Update{FieldIsSufficient: false}, nil
	}

	sufficient, reason, err := parseVerdict(raw)
	if err != nil {
		r.logger.Warn("Reviewer returned unusable output, continuing research", "error", err)
		return Update{FieldIsSufficient: false}, nil
	}

	r.logger.Info("Review complete", "sufficient", sufficient, "reason", reason, "steps_completed", steps)
	return Update{FieldIsSufficient: sufficient}, nil
}

func parseVerdict(raw string) (bool, string, error) {
	var verdict struct {
		Sufficient *bool  `json:"sufficient"`
		Reason     string `json:"reason"`
	}
	if err := decodeJSONObject(raw, &verdict); err != nil {
		return false, "", err
	}
	if verdict.Sufficient == nil {
		return false, "", fmt.Errorf("%w: missing \"sufficient\" field", ErrMalformedResponse)
	}
	return *verdict.Sufficient, verdict.Reason, nil
}
