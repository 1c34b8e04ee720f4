package mock

import (
	"context"
	"sync"

	"hirelens/internal/ai"
)

// CannedReply is returned by NewMockProvider for every prompt. It carries
// the cue words the field extractors look for so an offline run produces a
// populated analysis.
const CannedReply = `Name: Alex Morgan
Skills: Go, Python, Docker, Kubernetes, PostgreSQL
Experience: 6 years building backend services
Education: BSc Computer Science
Achievements: Led migration of the billing platform to Kubernetes
Strong match for Backend Engineer roles
Excellent ownership of production systems
Could improve frontend exposure
Overall: solid senior backend profile with room to grow in product work`

// MockProvider satisfies ai.Provider for tests and offline runs.
type MockProvider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, prompt string) (*ai.Completion, error)

	mu      sync.Mutex
	prompts []string
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Complete(ctx context.Context, prompt string) (*ai.Completion, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return &ai.Completion{Model: "mock-v1"}, nil
}

func (m *MockProvider) GetModelInfo(_ context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "mock-v1", DisplayName: "Mock", Available: true}
}

func (m *MockProvider) Close() error { return nil }

// Prompts returns a copy of every prompt received so far.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls returns the number of Complete invocations.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// NewMockProvider returns a MockProvider that answers every prompt with CannedReply.
func NewMockProvider() *MockProvider {
	return NewStaticProvider(CannedReply)
}

// NewStaticProvider returns a MockProvider that always answers with text.
func NewStaticProvider(text string) *MockProvider {
	return &MockProvider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, _ string) (*ai.Completion, error) {
			return &ai.Completion{
				Text:  text,
				Model: "mock-v1",
				TokenUsage: &ai.TokenUsage{
					InputTokens:  100,
					OutputTokens: int64(len(text) / 4),
					TotalTokens:  100 + int64(len(text)/4),
				},
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ string) (*ai.Completion, error) {
			return nil, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		CompleteFunc: func(ctx context.Context, _ string) (*ai.Completion, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
}

// Compile-time check that MockProvider implements Provider.
var _ ai.Provider = (*MockProvider)(nil)
