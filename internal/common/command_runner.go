package common

import (
	"context"

	"hirelens/internal/errors"
	"hirelens/internal/types"
)

// FileOperationFunc turns the resumes named on the command line into a
// printable result.
type FileOperationFunc[Output any] func(ctx context.Context, files []types.ResumeFile) (Output, error)

// RunFileCommand encapsulates the common logic for file-based CLI
// commands: read and validate the inputs, run the operation, then format
// and write the result.
func RunFileCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	maxFileSize int64,
	args []string,
	operation FileOperationFunc[Output],
) error {
	fileProcessor := NewFileProcessor(logger, maxFileSize)
	outputHandler := NewOutputHandler(logger)

	if err := fileProcessor.ValidateOutputFile(cmdConfig.OutputFile); err != nil {
		return err
	}

	files, err := fileProcessor.ValidateAndReadResumes(args...)
	if err != nil {
		return err
	}

	logger.Debug("Input files loaded", "count", len(files), "format", cmdConfig.OutputFormat)

	result, err := operation(ctx, files)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
