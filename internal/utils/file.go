package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Content types accepted for resume uploads
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain"
)

var resumeExtensions = []string{".pdf", ".docx", ".txt", ".md", ".markdown", ".text"}

// ValidateInputFile checks if a file exists and is readable
func ValidateInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", filename, err)
	}

	return nil
}

// ValidateOutputFile checks if the output file path is valid,
// creating its parent directory when missing
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsTextFile checks if the file has a text-based extension
func IsTextFile(filename string) bool {
	ext := GetFileExtension(filename)
	return slices.Contains([]string{".txt", ".md", ".markdown", ".text"}, ext)
}

// IsResumeFile reports whether the extension is one the extractor reads.
// Hidden and editor temp files are rejected.
func IsResumeFile(filename string) bool {
	base := filepath.Base(filename)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return slices.Contains(resumeExtensions, GetFileExtension(filename))
}

// ContentTypeFor guesses the upload content type from the extension.
// Unknown extensions map to PDF.
func ContentTypeFor(filename string) string {
	switch ext := GetFileExtension(filename); {
	case ext == ".docx":
		return ContentTypeDOCX
	case IsTextFile(filename):
		return ContentTypeText
	default:
		return ContentTypePDF
	}
}

// ReportName derives the report filename for an analysed resume,
// e.g. "jane_doe.pdf" with format "json" becomes "jane_doe.json".
func ReportName(resumeFilename, format string) string {
	base := strings.TrimSuffix(filepath.Base(resumeFilename), filepath.Ext(resumeFilename))
	ext := format
	if format == "markdown" {
		ext = "md"
	} else if format == "text" {
		ext = "txt"
	}
	return base + "." + ext
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
