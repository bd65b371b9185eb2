package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mikeboe/deep-research/pkg/config"
)

// Stage identifies a node of the research state machine.
type Stage int

const (
	StagePlanner Stage = iota
	StageTranslateInput
	StageResearcher
	StageContent
	StageReviewer
	StageWriter
	StageTranslateOutput
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StagePlanner:
		return "planner"
	case StageTranslateInput:
		return "translate_input"
	case StageResearcher:
		return "researcher"
	case StageContent:
		return "content"
	case StageReviewer:
		return "reviewer"
	case StageWriter:
		return "writer"
	case StageTranslateOutput:
		return "translate_output"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Node is one stage implementation. It reads a private copy of the state and
// returns the fields it wants to change.
type Node interface {
	Run(ctx context.Context, state ResearchState) (Update, error)
}

// NodeFunc adapts a function to Node.
type NodeFunc func(ctx context.Context, state ResearchState) (Update, error)

func (f NodeFunc) Run(ctx context.Context, state ResearchState) (Update, error) {
	return f(ctx, state)
}

// Transition returns the stage that follows current given the merged state.
// The reviewer loop falls through to the writer when the plan has no query
// left, since another researcher round could not add anything.
func Transition(current Stage, state *ResearchState) Stage {
	switch current {
	case StagePlanner:
		return StageTranslateInput
	case StageTranslateInput:
		return StageResearcher
	case StageResearcher:
		return StageContent
	case StageContent:
		return StageReviewer
	case StageReviewer:
		if state.IsSufficient || state.StepsCompleted >= len(state.Plan) {
			return StageWriter
		}
		return StageResearcher
	case StageWriter:
		return StageTranslateOutput
	default:
		return StageDone
	}
}

// Dependencies are the external collaborators of the engine. Translator may
// be nil, in which case the language bridges pass everything through.
type Dependencies struct {
	LLM        LanguageModel
	Search     SearchProvider
	Fetcher    PageFetcher
	Translator Translator
}

type ResearchEngine struct {
	Config        *config.Config
	Logger        *slog.Logger
	OnStateUpdate func(stage Stage, state ResearchState)

	nodes map[Stage]Node
}

func NewEngine(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*ResearchEngine, error) {
	if cfg == nil {
		return nil, errors.New("engine: config is required")
	}
	if deps.LLM == nil || deps.Search == nil || deps.Fetcher == nil {
		return nil, errors.New("engine: language model, search provider and page fetcher are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ResearchEngine{
		Config: cfg,
		Logger: logger,
		nodes: map[Stage]Node{
			StagePlanner:         NewPlanner(deps.LLM, cfg, logger.With("stage", StagePlanner.String())),
			StageTranslateInput:  NewInputBridge(deps.Translator, cfg, logger.With("stage", StageTranslateInput.String())),
			StageResearcher:      NewResearcher(deps.Search, logger.With("stage", StageResearcher.String())),
			StageContent:         NewContentStage(deps.Fetcher, deps.LLM, cfg, logger.With("stage", StageContent.String())),
			StageReviewer:        NewReviewer(deps.LLM, cfg, logger.With("stage", StageReviewer.String())),
			StageWriter:          NewWriter(deps.LLM, cfg, logger.With("stage", StageWriter.String())),
			StageTranslateOutput: NewOutputBridge(deps.Translator, cfg, logger.With("stage", StageTranslateOutput.String())),
		},
	}, nil
}

// SetNode replaces the implementation of one stage.
func (e *ResearchEngine) SetNode(stage Stage, node Node) {
	e.nodes[stage] = node
}

// Run researches task and returns the final report.
func (e *ResearchEngine) Run(ctx context.Context, task string) (string, error) {
	state, err := e.RunState(ctx, task)
	if err != nil {
		return "", err
	}
	return state.Report, nil
}

// RunState is Run but returns the whole final state. Stage errors are
// returned unwrapped so callers can match them with errors.As.
func (e *ResearchEngine) RunState(ctx context.Context, task string) (*ResearchState, error) {
	state := NewResearchState(task, NormalizeLanguage(e.Config.WorkingLanguage))
	e.Logger.Info("Starting research", "task", task)

	for stage := StagePlanner; stage != StageDone; stage = Transition(stage, state) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		node, ok := e.nodes[stage]
		if !ok {
			return nil, fmt.Errorf("engine: no node registered for stage %s", stage)
		}

		e.Logger.Debug("Entering stage", "stage", stage.String(), "steps_completed", state.StepsCompleted)
		update, err := node.Run(ctx, state.Clone())
		if err != nil {
			e.Logger.Error("Stage failed", "stage", stage.String(), "error", err)
			return nil, err
		}
		if err := state.Merge(update); err != nil {
			return nil, fmt.Errorf("engine: %s output: %w", stage, err)
		}

		if e.OnStateUpdate != nil {
			e.OnStateUpdate(stage, state.Clone())
		}
	}

	e.Logger.Info("Research complete",
		"steps_completed", state.StepsCompleted,
		"references", len(state.References),
		"content", len(state.Content),
	)
	return state, nil
}
