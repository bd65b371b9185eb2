package research

import (
	"context"
	"log/slog"

	"github.com/mikeboe/deep-research/pkg/config"
)

const writerTemperature = 0.7

// Writer synthesizes the final report.
type Writer struct {
	llm    LanguageModel
	model  string
	logger *slog.Logger
}

func NewWriter(llm LanguageModel, cfg *config.Config, logger *slog.Logger) *Writer {
	return &Writer{llm: llm, model: cfg.PlannerModel, logger: logger}
}

func (w *Writer) Run(ctx context.Context, state ResearchState) (Update, error) {
	w.logger.Info("Compiling final report", "content", len(state.Content), "references", len(state.References))

	report, err := w.llm.Generate(ctx, formatWriterPrompt(state.Task, state.Content, state.References), w.model, writerTemperature)
	if err != nil {
		return nil, &WritingError{Err: err}
	}

	w.logger.Info("Final report generated", "length", len(report))
	return Update{FieldReport: report}, nil
}
