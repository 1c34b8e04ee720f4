package mock_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hirelens/internal/ai/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- NewMockProvider ---

func TestNewMockProvider_Name(t *testing.T) {
	p := mock.NewMockProvider()
	assert.Equal(t, "mock", p.Name())
}

func TestNewMockProvider_Complete(t *testing.T) {
	p := mock.NewMockProvider()
	completion, err := p.Complete(context.Background(), "Analyze this")

	require.NoError(t, err)
	assert.Equal(t, mock.CannedReply, completion.Text)
	assert.Equal(t, "mock-v1", completion.Model)
	require.NotNil(t, completion.TokenUsage)
	assert.Positive(t, completion.TokenUsage.TotalTokens)
}

func TestNewMockProvider_RecordsPrompts(t *testing.T) {
	p := mock.NewMockProvider()
	_, _ = p.Complete(context.Background(), "first")
	_, _ = p.Complete(context.Background(), "second")

	assert.Equal(t, 2, p.Calls())
	assert.Equal(t, []string{"first", "second"}, p.Prompts())
}

func TestNewMockProvider_ConcurrentUse(t *testing.T) {
	p := mock.NewMockProvider()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Complete(context.Background(), "prompt")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, p.Calls())
}

func TestNewMockProvider_ModelInfo(t *testing.T) {
	info := mock.NewMockProvider().GetModelInfo(context.Background())
	assert.True(t, info.Available)
	assert.Equal(t, "mock-v1", info.Name)
}

// --- NewFailingProvider ---

func TestNewFailingProvider(t *testing.T) {
	boom := errors.New("quota exhausted")
	p := mock.NewFailingProvider(boom)

	assert.Equal(t, "mock-failing", p.Name())
	_, err := p.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, boom)
}

// --- NewTimeoutProvider ---

func TestNewTimeoutProvider_BlocksUntilDeadline(t *testing.T) {
	p := mock.NewTimeoutProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Complete(ctx, "prompt")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

// --- Zero value ---

func TestZeroValueProvider(t *testing.T) {
	p := &mock.MockProvider{}
	completion, err := p.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Empty(t, completion.Text)
	assert.NoError(t, p.Close())
}
