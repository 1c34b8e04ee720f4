package common

import (
	"fmt"
	"os"
	"path/filepath"

	"hirelens/internal/errors"
	"hirelens/internal/types"
	"hirelens/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance. A maxFileSize
// of zero disables the size check.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadResume reads one resume file with proper error handling
func (fp *FileProcessor) ReadResume(filename string) (types.ResumeFile, error) {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ResumeFile{}, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return types.ResumeFile{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	if fp.maxFileSize > 0 && info.Size() > fp.maxFileSize {
		return types.ResumeFile{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("File %s is %s, larger than the %s limit", filename,
				utils.FormatFileSize(info.Size()), utils.FormatFileSize(fp.maxFileSize)), nil)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return types.ResumeFile{}, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return types.ResumeFile{
		Filename:    filepath.Base(filename),
		Data:        data,
		ContentType: utils.ContentTypeFor(filename),
	}, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateAndReadResumes validates and reads multiple resume files
func (fp *FileProcessor) ValidateAndReadResumes(filenames ...string) ([]types.ResumeFile, error) {
	files := make([]types.ResumeFile, len(filenames))

	for i, filename := range filenames {
		if err := utils.ValidateInputFile(filename); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		// Warn about files that do not look like resumes
		if !utils.IsResumeFile(filename) && fp.logger != nil {
			fp.logger.Warn("File may not be a supported resume format, reading it as PDF",
				"filename", filename)
		}

		file, err := fp.ReadResume(filename)
		if err != nil {
			return nil, err // Error already wrapped by ReadResume
		}
		files[i] = file
	}

	return files, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
