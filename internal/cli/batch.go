package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"hirelens/internal/agents"
	"hirelens/internal/common"
	"hirelens/internal/errors"
	"hirelens/internal/progress"
	"hirelens/internal/types"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch [resume-file...]",
	Short: "Analyze several resumes against the same role",
	Long: `Analyze every resume given on the command line against one target role.

A resume that cannot be read or analysed is reported as an error entry;
the rest of the batch still runs. Entries are printed in argument order.
analysis.batchConcurrency controls how many resumes are analysed at once.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if cfg.Analysis.MaxBatchFiles > 0 && len(args) > cfg.Analysis.MaxBatchFiles {
			return fmt.Errorf("too many files: %d (limit is %d)", len(args), cfg.Analysis.MaxBatchFiles)
		}
		if batchConfig.OutputFormat == "" {
			batchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(batchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runBatch,
}

var (
	batchConfig   common.CommandConfig
	batchRole     string
	batchProgress bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	batchCmd.Flags().StringVar(&batchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	batchCmd.Flags().StringVarP(&batchRole, "role", "r", "", "Target role every resume is matched against")
	batchCmd.Flags().BoolVar(&batchProgress, "progress", false, "Print agent progress to stderr")
	_ = batchCmd.MarkFlagRequired("role")

	registerFormatCompletion(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	svc, err := newServices(cmd.Context(), cfg, logger, serviceOptions{})
	if err != nil {
		return err
	}
	defer svc.Close()

	var observe func(i int, file types.ResumeFile) agents.Observer
	if batchProgress {
		renderer := progress.NewConsoleRenderer(os.Stderr, svc.agentNames())
		observe = func(_ int, file types.ResumeFile) agents.Observer {
			return renderer.WithLabel(file.Filename)
		}
	}

	fileProcessor := common.NewFileProcessor(logger, cfg.App.MaxFileSize)
	if err := fileProcessor.ValidateOutputFile(batchConfig.OutputFile); err != nil {
		return err
	}

	// Unreadable files become error entries; the rest of the batch still runs
	entries := make([]types.BatchEntry, len(args))
	files := make([]types.ResumeFile, 0, len(args))
	slots := make([]int, 0, len(args))
	for i, path := range args {
		file, err := fileProcessor.ReadResume(path)
		if err != nil {
			name := filepath.Base(path)
			entries[i] = types.BatchEntry{
				Filename: name,
				Error:    &types.FileError{Filename: name, Message: errors.Message(err)},
			}
			continue
		}
		files = append(files, file)
		slots = append(slots, i)
	}

	logger.Info("Starting batch analysis",
		"files", len(args),
		"readable", len(files),
		"role", batchRole,
		"concurrency", cfg.Analysis.BatchConcurrency)

	for j, entry := range svc.analyzer.AnalyzeManyObserved(cmd.Context(), files, batchRole, observe) {
		entries[slots[j]] = entry
	}
	result := types.NewBatchResult(batchRole, entries)

	logger.Info("Batch analysis finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed)

	return common.NewOutputHandler(logger).HandleOutput(result, batchConfig)
}
