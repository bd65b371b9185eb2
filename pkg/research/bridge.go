package research

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mikeboe/deep-research/pkg/config"
)

// NormalizeLanguage folds regional variants onto the base code ("zh-cn" -> "zh").
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}

// InputBridge moves the task into the working language and records where it came from.
type InputBridge struct {
	translator Translator
	enabled    bool
	working    string
	logger     *slog.Logger
}

func NewInputBridge(translator Translator, cfg *config.Config, logger *slog.Logger) *InputBridge {
	return &InputBridge{
		translator: translator,
		enabled:    cfg.EnableTranslation && translator != nil,
		working:    NormalizeLanguage(cfg.WorkingLanguage),
		logger:     logger,
	}
}

func (b *InputBridge) Run(ctx context.Context, state ResearchState) (Update, error) {
	task := state.Task
	if !b.enabled {
		return Update{
			FieldSourceLanguage: b.working,
			FieldOriginalTask:   task,
		}, nil
	}

	lang, err := b.translator.Detect(task)
	if err != nil || strings.TrimSpace(lang) == "" {
		b.logger.Debug("Language detection failed, assuming working language", "error", err)
		lang = b.working
	}

	update := Update{
		FieldSourceLanguage: lang,
		FieldOriginalTask:   task,
		FieldTask:           task,
	}
	if NormalizeLanguage(lang) == b.working {
		return update, nil
	}

	translated, err := b.translator.Translate(ctx, task, lang, b.working)
	if err != nil || strings.TrimSpace(translated) == "" {
		b.logger.Warn("Task translation failed, keeping original text", "language", lang, "error", err)
		return update, nil
	}

	b.logger.Info("Translated task", "from", lang, "to", b.working)
	update[FieldTask] = translated
	return update, nil
}

// OutputBridge translates the report back into the task's source language.
type OutputBridge struct {
	translator Translator
	enabled    bool
	working    string
	logger     *slog.Logger
}

func NewOutputBridge(translator Translator, cfg *config.Config, logger *slog.Logger) *OutputBridge {
	return &OutputBridge{
		translator: translator,
		enabled:    cfg.EnableTranslation && translator != nil,
		working:    NormalizeLanguage(cfg.WorkingLanguage),
		logger:     logger,
	}
}

func (b *OutputBridge) Run(ctx context.Context, state ResearchState) (Update, error) {
	if !b.enabled || state.Report == "" {
		return Update{}, nil
	}
	if state.SourceLanguage == "" || NormalizeLanguage(state.SourceLanguage) == b.working {
		return Update{}, nil
	}

	translated, err := b.translator.Translate(ctx, state.Report, b.working, state.SourceLanguage)
	if err != nil || strings.TrimSpace(translated) == "" {
		b.logger.Warn("Report translation failed, keeping working-language report", "language", state.SourceLanguage, "error", err)
		return Update{}, nil
	}

	b.logger.Info("Translated report", "from", b.working, "to", state.SourceLanguage)
	return Update{FieldReport: translated}, nil
}
