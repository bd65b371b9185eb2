package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/deep-research/pkg/clients"
	"github.com/mikeboe/deep-research/pkg/config"
	"github.com/mikeboe/deep-research/pkg/research"
	"github.com/mikeboe/deep-research/pkg/research/tools"
	"github.com/mikeboe/deep-research/pkg/translate"
)

var (
	task        string
	outputPath  string
	noTranslate bool
	verbose     bool
)

func main() {
	// It's okay if .env doesn't exist, as long as env vars are set
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "deep-research",
		Short: "A terminal-based research agent",
		Long:  `deep-research plans search queries for a task, gathers and summarizes sources over several rounds and writes a Markdown report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if noTranslate {
				cfg.EnableTranslation = false
			}
			if verbose {
				cfg.LogLevel = slog.LevelDebug
			}

			// Logs go to stderr so the report can be piped
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
			logger := slog.New(handler)
			slog.SetDefault(logger)

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if !cmd.Flags().Changed("task") {
				// Interactive Mode
				reader := bufio.NewReader(os.Stdin)
				fmt.Fprint(os.Stderr, "Enter research task: ")
				input, _ := reader.ReadString('\n')
				task = strings.TrimSpace(input)
			}
			if strings.TrimSpace(task) == "" {
				return fmt.Errorf("task cannot be empty")
			}

			ctx := context.Background()
			engine, err := newEngine(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if verbose {
				engine.OnStateUpdate = func(stage research.Stage, state research.ResearchState) {
					logger.Debug("State updated",
						"stage", stage.String(),
						"steps_completed", state.StepsCompleted,
						"plan", len(state.Plan),
						"references", len(state.References),
						"content", len(state.Content),
						"sufficient", state.IsSufficient,
					)
				}
			}

			report, err := engine.Run(ctx, task)
			if err != nil {
				return fmt.Errorf("research failed: %w", err)
			}

			fmt.Println(report)
			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(report), 0o644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				logger.Info("Report saved", "path", outputPath)
			}
			return nil
		},
	}

	rootCmd.SilenceUsage = true
	rootCmd.Flags().StringVarP(&task, "task", "t", "", "The research task")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to this file")
	rootCmd.Flags().BoolVar(&noTranslate, "no-translate", false, "Skip language detection and translation")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Log every stage and state update")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func newEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*research.ResearchEngine, error) {
	llm, err := clients.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	search, err := tools.NewSearchProvider(cfg)
	if err != nil {
		return nil, err
	}

	deps := research.Dependencies{
		LLM:     llm,
		Search:  search,
		Fetcher: tools.NewFetcher(cfg),
	}
	if cfg.EnableTranslation {
		deps.Translator = translate.NewService(llm, cfg)
	}

	return research.NewEngine(cfg, deps, logger)
}
