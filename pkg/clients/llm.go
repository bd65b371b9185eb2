package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/mikeboe/deep-research/pkg/config"
)

// ErrEmptyResponse is returned when the backend answers without any choice.
var ErrEmptyResponse = errors.New("llm returned no choices")

// ModelError wraps a failed model call. Transient errors (timeouts, refused
// or dropped connections) may succeed on a later attempt; the rest will not.
type ModelError struct {
	Model     string
	Transient bool
	Err       error
}

func (e *ModelError) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("llm %s call failed (%s): %v", e.Model, kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// IsTransient reports whether err came from a model call worth retrying.
func IsTransient(err error) bool {
	var me *ModelError
	return errors.As(err, &me) && me.Transient
}

// LLM adapts a langchaingo model to the research.LanguageModel contract.
type LLM struct {
	model        llms.Model
	defaultModel string
	timeout      time.Duration
}

func NewLLM(model llms.Model, defaultModel string) *LLM {
	return &LLM{model: model, defaultModel: defaultModel}
}

// WithTimeout bounds every call made through l.
func (l *LLM) WithTimeout(timeout time.Duration) *LLM {
	l.timeout = timeout
	return l
}

// New builds the configured backend.
func New(ctx context.Context, cfg *config.Config) (*LLM, error) {
	switch cfg.LLMProvider {
	case "ollama":
		return Ollama(cfg)
	case "google":
		return GoogleAi(ctx, cfg)
	case "anthropic":
		return AnthropicAI(cfg)
	default:
		return nil, fmt.Errorf("invalid llm provider: %s", cfg.LLMProvider)
	}
}

func Ollama(cfg *config.Config) (*LLM, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.OllamaURL),
		ollama.WithModel(cfg.WorkerModel),
		ollama.WithHTTPClient(httpClient(cfg)),
		ollama.WithRunnerNumCtx(cfg.MaxContextLength),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init ollama client: %w", err)
	}
	return NewLLM(llm, cfg.WorkerModel).WithTimeout(cfg.LLMTimeout), nil
}

func GoogleAi(ctx context.Context, cfg *config.Config) (*LLM, error) {
	// See https://ai.google.dev/gemini-api/docs/models/gemini for possible models
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.GoogleApiKey),
		googleai.WithDefaultModel(cfg.WorkerModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init google ai client: %w", err)
	}
	return NewLLM(llm, cfg.WorkerModel).WithTimeout(cfg.LLMTimeout), nil
}

func AnthropicAI(cfg *config.Config) (*LLM, error) {
	llm, err := anthropic.New(
		anthropic.WithToken(cfg.AnthropicApiKey),
		anthropic.WithModel(cfg.WorkerModel),
		anthropic.WithHTTPClient(httpClient(cfg)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init anthropic client: %w", err)
	}
	return NewLLM(llm, cfg.WorkerModel).WithTimeout(cfg.LLMTimeout), nil
}

// httpClient is handed to backends that accept their own HTTP client.
func httpClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.LLMTimeout}
}

func (l *LLM) Generate(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	return l.generate(ctx, prompt, model, temperature, false)
}

// GenerateJSON asks the backend to constrain its answer to a JSON object.
func (l *LLM) GenerateJSON(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	return l.generate(ctx, prompt, model, temperature, true)
}

func (l *LLM) generate(ctx context.Context, prompt, model string, temperature float64, jsonMode bool) (string, error) {
	if model == "" {
		model = l.defaultModel
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	opts := []llms.CallOption{
		llms.WithModel(model),
		llms.WithTemperature(temperature),
	}
	if jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := l.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, opts...)
	if err != nil {
		return "", &ModelError{Model: model, Transient: isTransient(err), Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &ModelError{Model: model, Err: ErrEmptyResponse}
	}

	return resp.Choices[0].Content, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
