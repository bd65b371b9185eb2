package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/research"
)

// ErrBusy is returned while another research run holds the service.
var ErrBusy = errors.New("a research run is already in progress")

type Service struct {
	Cfg  *config.Config
	Deps research.Dependencies

	// Base receives a copy of every run's log records. May be nil.
	Base slog.Handler

	mu sync.Mutex
}

func NewService(cfg *config.Config, deps research.Dependencies, base slog.Handler) *Service {
	return &Service{Cfg: cfg, Deps: deps, Base: base}
}

type CreateRunRequest struct {
	Task string `json:"task"`
}

type Run struct {
	ID             uuid.UUID  `json:"id"`
	Task           string     `json:"task"`
	Report         string     `json:"report,omitempty"`
	StepsCompleted int        `json:"steps_completed"`
	References     []string   `json:"references"`
	Error          string     `json:"error,omitempty"`
	Logs           []LogEntry `json:"logs"`
}

// Research runs one task to completion. The returned Run is never nil, so
// callers get the logs of failed runs too.
func (s *Service) Research(ctx context.Context, req CreateRunRequest) (*Run, error) {
	run := &Run{ID: uuid.New(), Task: req.Task, References: []string{}, Logs: []LogEntry{}}

	if strings.TrimSpace(req.Task) == "" {
		err := fmt.Errorf("%w: task must not be empty", research.ErrInvalidInput)
		run.Error = err.Error()
		return run, err
	}
	if !s.mu.TryLock() {
		run.Error = ErrBusy.Error()
		return run, ErrBusy
	}
	defer s.mu.Unlock()

	recorder := NewRecordingHandler(s.Base)
	logger := slog.New(recorder).With("run_id", run.ID.String())
	defer func() { run.Logs = recorder.Entries() }()

	engine, err := research.NewEngine(s.Cfg, s.Deps, logger)
	if err != nil {
		run.Error = err.Error()
		return run, fmt.Errorf("failed to init engine: %w", err)
	}

	state, err := engine.RunState(ctx, req.Task)
	if err != nil {
		run.Error = err.Error()
		return run, err
	}

	run.Report = state.Report
	run.StepsCompleted = state.StepsCompleted
	if len(state.References) > 0 {
		run.References = state.References
	}
	return run, nil
}
