package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"hirelens/internal/agents"
	"hirelens/internal/common"
	"hirelens/internal/errors"
	"hirelens/internal/progress"
	"hirelens/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze one resume against a target role",
	Long: `Analyze a PDF, DOCX or plain-text resume with the seven analyst agents
and print the assembled candidate record.

The record includes:
- Skills, experience, education and achievements
- Technical proficiency and role matches
- Strengths, concerns and improvement areas
- A heuristic match score for the target role
- Contact links found in the document`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig   common.CommandConfig
	analyzeRole     string
	analyzeProgress bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeRole, "role", "r", "", "Target role the resume is matched against")
	analyzeCmd.Flags().BoolVar(&analyzeProgress, "progress", false, "Print agent progress to stderr")
	_ = analyzeCmd.MarkFlagRequired("role")

	registerFormatCompletion(analyzeCmd)
}

// registerFormatCompletion adds shell completion for the --format flag
func registerFormatCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	svc, err := newServices(cmd.Context(), cfg, logger, serviceOptions{})
	if err != nil {
		return err
	}
	defer svc.Close()

	analyzeOperation := func(ctx context.Context, files []types.ResumeFile) (*types.ResumeAnalysis, error) {
		file := files[0]
		logger.Info("Starting resume analysis",
			"file", file.Filename,
			"role", analyzeRole,
			"output_format", analyzeConfig.OutputFormat)

		var observer agents.Observer
		if analyzeProgress {
			var stop func()
			observer, stop = startConsoleProgress(ctx, svc, file.Filename)
			defer stop()
		}
		return svc.analyzer.Analyze(ctx, file, analyzeRole, observer)
	}

	err = common.RunFileCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		cfg.App.MaxFileSize,
		args,
		analyzeOperation,
	)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeExtraction) {
			return fmt.Errorf("failed to read resume: %w", err)
		}
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}

// startConsoleProgress returns an observer that prints each agent state
// change to stderr, plus a progress bar frame every two seconds while
// agents are working. stop waits for the last frame.
func startConsoleProgress(ctx context.Context, svc *services, label string) (agents.Observer, func()) {
	renderer := progress.NewConsoleRenderer(os.Stderr, svc.agentNames()).WithLabel(label)

	ids := make([]string, 0, len(svc.analyzer.Agents()))
	for _, p := range svc.analyzer.Agents() {
		ids = append(ids, p.ID)
	}
	tracker := progress.NewTracker(ids)
	sim := progress.NewSimulator(tracker, 2*time.Second, 10, renderer.RenderFrame)

	simCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sim.Run(simCtx)
	}()

	return agents.MultiObserver(tracker, renderer), func() {
		cancel()
		<-done
		tracker.Close()
	}
}
