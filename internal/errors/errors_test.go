package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormatting(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewAIError(ErrCodeAIServiceFailed, "Failed to generate content", cause)

	assert.Equal(t, "AI_SERVICE_FAILED: Failed to generate content (caused by: connection reset)", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := NewValidationError(ErrCodeInvalidRequest, "role is required", nil)
	assert.Equal(t, "INVALID_REQUEST: role is required", plain.Error())
}

func TestIsTypeAndHasCode(t *testing.T) {
	err := fmt.Errorf("analyze jane.pdf: %w",
		NewExtractionError(ErrCodeEmptyDocument, "No text content found in jane.pdf", nil))

	assert.True(t, IsType(err, ErrorTypeExtraction))
	assert.False(t, IsType(err, ErrorTypeAI))
	assert.True(t, HasCode(err, ErrCodeEmptyDocument))
	assert.False(t, HasCode(err, ErrCodeExtractionFailed))

	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeValidation))
}

func TestModelInvocationError(t *testing.T) {
	err := NewModelInvocationError("skills_analysis", stderrors.New("quota exceeded"))

	assert.Equal(t, ErrorTypeAI, err.Type)
	assert.Equal(t, ErrCodeModelInvocation, err.Code)
	assert.Equal(t, "quota exceeded", err.Message)
	assert.Equal(t, "skills_analysis", err.Context["agent_id"])

	assert.Equal(t, "model invocation failed", NewModelInvocationError("x", nil).Message)
}

func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewIOError(ErrCodeFileNotFound, "File not found: cv.pdf", nil))
	assert.Equal(t, "File not found: cv.pdf", Message(wrapped))
	assert.Equal(t, "boom", Message(stderrors.New("boom")))
}

func TestLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)

	err := NewExtractionError(ErrCodeExtractionFailed, "Failed to extract text", stderrors.New("bad xref")).
		WithContext("filename", "cv.pdf")
	logger.LogError(err, "Analysis failed", "role", "Backend Engineer")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "Analysis failed", record["msg"])
	assert.Equal(t, "extraction", record["error_type"])
	assert.Equal(t, ErrCodeExtractionFailed, record["error_code"])
	assert.Equal(t, "cv.pdf", record["filename"])
	assert.Equal(t, "bad xref", record["cause"])
	assert.Equal(t, "Backend Engineer", record["role"])
}

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := New("verbose")
	assert.Error(t, err)
}
