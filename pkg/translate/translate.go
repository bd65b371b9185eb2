package translate

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"

	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/research"
)

const translationTemperature = 0.3

// Languages lists the codes the service translates between, with the names
// used when prompting the model.
var Languages = map[string]string{
	"en": "English",
	"ja": "Japanese",
	"zh": "Chinese",
	"ko": "Korean",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"ru": "Russian",
}

// detectable restricts detection to the languages the service can translate.
var detectable = whatlanggo.Options{Whitelist: map[whatlanggo.Lang]bool{
	whatlanggo.Eng: true,
	whatlanggo.Jpn: true,
	whatlanggo.Cmn: true,
	whatlanggo.Kor: true,
	whatlanggo.Deu: true,
	whatlanggo.Fra: true,
	whatlanggo.Spa: true,
	whatlanggo.Rus: true,
}}

// TranslationError is returned when a text could not be translated.
type TranslationError struct {
	Source string
	Target string
	Err    error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %s->%s: %v", e.Source, e.Target, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// Service detects languages locally and translates through a language model.
type Service struct {
	llm     research.LanguageModel
	model   string
	working string
}

func NewService(llm research.LanguageModel, cfg *config.Config) *Service {
	return &Service{
		llm:     llm,
		model:   cfg.WorkerModel,
		working: research.NormalizeLanguage(cfg.WorkingLanguage),
	}
}

// Detect returns the ISO 639-1 code of text among the supported languages.
// Blank text and low-confidence Latin-script guesses are reported as the
// working language.
func (s *Service) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return s.working, nil
	}

	info := whatlanggo.DetectWithOptions(text, detectable)
	code := info.Lang.Iso6391()
	if code == "" {
		return s.working, nil
	}
	if info.Script == unicode.Latin && !info.IsReliable() {
		return s.working, nil
	}
	return code, nil
}

func (s *Service) Translate(ctx context.Context, text, source, target string) (string, error) {
	src, tgt := research.NormalizeLanguage(source), research.NormalizeLanguage(target)
	if src == tgt || strings.TrimSpace(text) == "" {
		return text, nil
	}

	srcName, ok := Languages[src]
	if !ok {
		return "", &TranslationError{Source: source, Target: target, Err: fmt.Errorf("unsupported language %q", source)}
	}
	tgtName, ok := Languages[tgt]
	if !ok {
		return "", &TranslationError{Source: source, Target: target, Err: fmt.Errorf("unsupported language %q", target)}
	}

	out, err := s.llm.Generate(ctx, formatPrompt(text, srcName, tgtName), s.model, translationTemperature)
	if err != nil {
		return "", &TranslationError{Source: source, Target: target, Err: err}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", &TranslationError{Source: source, Target: target, Err: fmt.Errorf("empty translation")}
	}
	return out, nil
}

func formatPrompt(text, sourceName, targetName string) string {
	return fmt.Sprintf(`Translate the following text from %s to %s.
Preserve Markdown formatting, URLs and proper nouns. Return only the translated text.

Text:
%s
`, sourceName, targetName, text)
}
