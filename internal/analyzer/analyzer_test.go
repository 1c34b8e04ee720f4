package analyzer

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"hirelens/internal/agents"
	"hirelens/internal/ai"
	"hirelens/internal/ai/mock"
	"hirelens/internal/cache"
	"hirelens/internal/errors"
	"hirelens/internal/extraction"
	"hirelens/internal/store"
	"hirelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeText = `Jane Doe
Senior Backend Engineer
https://linkedin.com/in/janedoe
https://github.com/janedoe
Skills: Python, Django, AWS`

func textFile(name, body string) types.ResumeFile {
	return types.ResumeFile{Filename: name, Data: []byte(body), ContentType: "text/plain"}
}

func newAnalyzer(t *testing.T, provider ai.Provider, opts ...Option) *Analyzer {
	t.Helper()
	logger := errors.NewDiscardLogger()
	invoker := agents.NewInvoker(provider, 0, logger)
	orch := agents.NewOrchestrator(invoker, nil, 1, logger)
	return New(extraction.NewExtractor(logger), orch, logger, opts...)
}

// failingFor answers with the canned reply except for one persona
func failingFor(agentID string) *mock.MockProvider {
	persona, _ := agents.Lookup(agentID)
	return &mock.MockProvider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, prompt string) (*ai.Completion, error) {
			if strings.HasPrefix(prompt, persona.Instruction) {
				return nil, stderrors.New("quota exceeded")
			}
			return &ai.Completion{Text: mock.CannedReply, Model: "mock-v1"}, nil
		},
	}
}

func TestAnalyze_AllAgentsTerminal(t *testing.T) {
	a := newAnalyzer(t, mock.NewMockProvider())

	got, err := a.Analyze(context.Background(), textFile("jane.txt", resumeText), "Backend Engineer", nil)
	require.NoError(t, err)

	require.Len(t, got.AgentStatuses, 7)
	for _, id := range agents.IDs() {
		st, ok := got.AgentStatuses[id]
		require.True(t, ok, id)
		assert.Equal(t, types.AgentCompleted, st.State, id)
	}
	assert.Equal(t, 7, got.Metadata.CompletedAgentCount)
	assert.Equal(t, 7, got.Metadata.TotalAgentCount)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "jane.txt", got.Filename)
	assert.Equal(t, "Backend Engineer", got.TargetRole)
	assert.Equal(t, "Alex Morgan", got.CandidateName)
	assert.Contains(t, got.Skills, "Kubernetes")
	assert.GreaterOrEqual(t, got.MatchScore, 60)
	assert.LessOrEqual(t, got.MatchScore, 99)
}

func TestAnalyze_SkillsAreOnlyNamedSkills(t *testing.T) {
	a := newAnalyzer(t, mock.NewStaticProvider("Skills: Python, Django, AWS."))

	got, err := a.Analyze(context.Background(), textFile("jane.txt", resumeText), "Backend Engineer", nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Python", "Django", "AWS"}, got.Skills)
	assert.Contains(t, got.TechnicalProficiency.Languages, "Go", "substring keyword hits stay in technical proficiency")
}

func TestAnalyze_ContactFromLinks(t *testing.T) {
	a := newAnalyzer(t, mock.NewMockProvider())

	got, err := a.Analyze(context.Background(), textFile("jane.txt", resumeText), "", nil)
	require.NoError(t, err)

	assert.Equal(t, "https://linkedin.com/in/janedoe", got.Contact.LinkedIn)
	assert.Equal(t, "https://github.com/janedoe", got.Contact.GitHub)
	assert.Empty(t, got.Contact.Email)
}

func TestAnalyze_OneAgentFails(t *testing.T) {
	a := newAnalyzer(t, failingFor(agents.GrowthAnalysis))

	got, err := a.Analyze(context.Background(), textFile("jane.txt", resumeText), "Backend Engineer", nil)
	require.NoError(t, err)

	assert.Equal(t, types.AgentError, got.AgentStatuses[agents.GrowthAnalysis].State)
	assert.Zero(t, got.AgentResults[agents.GrowthAnalysis].Confidence)
	assert.True(t, strings.HasPrefix(got.AgentResults[agents.GrowthAnalysis].RawText, "Error analyzing growth_analysis: "))
	for _, id := range agents.IDs() {
		if id == agents.GrowthAnalysis {
			continue
		}
		assert.Equal(t, types.AgentCompleted, got.AgentStatuses[id].State, id)
	}
	assert.Equal(t, 6, got.Metadata.CompletedAgentCount)
	assert.NotEmpty(t, got.Cons, "growth failure falls back to default cons")
	assert.NotEmpty(t, got.Skills)
	assert.NotEmpty(t, got.Pros)
}

func TestAnalyze_ExtractionError(t *testing.T) {
	provider := mock.NewMockProvider()
	a := newAnalyzer(t, provider)

	_, err := a.Analyze(context.Background(), textFile("blank.txt", "   \n  "), "", nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExtraction))
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyDocument))
	assert.Zero(t, provider.Calls(), "no agent runs without text")
}

func TestAnalyze_FilenameFallbackName(t *testing.T) {
	a := newAnalyzer(t, mock.NewStaticProvider("Nothing useful here."))

	got, err := a.Analyze(context.Background(), textFile("john_smith_resume.txt", resumeText), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", got.CandidateName)
}

func TestAnalyze_ObserverSeesEveryTransition(t *testing.T) {
	a := newAnalyzer(t, mock.NewMockProvider())

	var mu sync.Mutex
	seen := map[string][]types.AgentState{}
	obs := agents.ObserverFunc(func(id string, st types.AgentStatus) {
		mu.Lock()
		defer mu.Unlock()
		seen[id] = append(seen[id], st.State)
	})

	_, err := a.Analyze(context.Background(), textFile("jane.txt", resumeText), "", obs)
	require.NoError(t, err)

	require.Len(t, seen, 7)
	for id, states := range seen {
		assert.Equal(t, []types.AgentState{types.AgentIdle, types.AgentWorking, types.AgentCompleted}, states, id)
	}
}

func TestAnalyze_CacheHitSkipsAgents(t *testing.T) {
	provider := mock.NewMockProvider()
	ac := cache.NewAnalysisCache(cache.NewMemoryCache(), time.Hour, "test:")
	a := newAnalyzer(t, provider, WithCache(ac))

	first, err := a.Analyze(context.Background(), textFile("jane.txt", resumeText), "Backend Engineer", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, provider.Calls())

	second, err := a.Analyze(context.Background(), textFile("copy.txt", resumeText), "backend engineer", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, provider.Calls(), "cached result served without model calls")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.MatchScore, second.MatchScore)
	assert.Equal(t, first.AgentStatuses, second.AgentStatuses)
	assert.Equal(t, "copy.txt", second.Filename)

	_, err = a.Analyze(context.Background(), textFile("jane.txt", resumeText), "Data Scientist", nil)
	require.NoError(t, err)
	assert.Equal(t, 14, provider.Calls())
}

// repairableProvider fails every call until repaired
type repairableProvider struct {
	*mock.MockProvider
	mu     sync.Mutex
	broken bool
}

func newRepairableProvider() *repairableProvider {
	p := &repairableProvider{broken: true}
	p.MockProvider = &mock.MockProvider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, _ string) (*ai.Completion, error) {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.broken {
				return nil, stderrors.New("model unavailable")
			}
			return &ai.Completion{Text: mock.CannedReply, Model: "mock-v1"}, nil
		},
	}
	return p
}

func (p *repairableProvider) repair() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broken = false
}

func TestAnalyze_DegradedRunIsNotCached(t *testing.T) {
	provider := newRepairableProvider()
	ac := cache.NewAnalysisCache(cache.NewMemoryCache(), time.Hour, "test:")
	a := newAnalyzer(t, provider, WithCache(ac))
	file := textFile("jane.txt", resumeText)

	first, err := a.Analyze(context.Background(), file, "Backend Engineer", nil)
	require.NoError(t, err)
	assert.Zero(t, first.Metadata.CompletedAgentCount)
	assert.Equal(t, 7, provider.Calls())

	provider.repair()
	second, err := a.Analyze(context.Background(), file, "Backend Engineer", nil)
	require.NoError(t, err)
	assert.Equal(t, 14, provider.Calls(), "a degraded run must not be served from cache")
	assert.Equal(t, 7, second.Metadata.CompletedAgentCount)
	assert.NotEqual(t, first.ID, second.ID)

	third, err := a.Analyze(context.Background(), file, "Backend Engineer", nil)
	require.NoError(t, err)
	assert.Equal(t, 14, provider.Calls(), "a complete run is cached")
	assert.Equal(t, 7, third.Metadata.CompletedAgentCount)
}

func TestAnalyze_CancelledRunIsNotCached(t *testing.T) {
	ac := cache.NewAnalysisCache(cache.NewMemoryCache(), time.Hour, "test:")
	a := newAnalyzer(t, mock.NewTimeoutProvider(), WithCache(ac))
	file := textFile("jane.txt", resumeText)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := a.Analyze(ctx, file, "", nil)
	require.NoError(t, err)

	_, found, err := ac.Get(context.Background(), file.Data, "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAnalyze_CacheHitReplaysStatuses(t *testing.T) {
	provider := mock.NewMockProvider()
	ac := cache.NewAnalysisCache(cache.NewMemoryCache(), time.Hour, "test:")
	s := store.NewMemoryStore()
	a := newAnalyzer(t, provider, WithCache(ac), WithStore(s))

	_, err := a.Analyze(context.Background(), textFile("jane.txt", resumeText), "Backend Engineer", nil)
	require.NoError(t, err)

	var order []string
	obs := agents.ObserverFunc(func(id string, st types.AgentStatus) {
		assert.Equal(t, types.AgentCompleted, st.State, id)
		order = append(order, id)
	})
	hit, err := a.Analyze(context.Background(), textFile("jane.txt", resumeText), "Backend Engineer", obs)
	require.NoError(t, err)
	assert.Equal(t, 7, provider.Calls())
	assert.Equal(t, agents.IDs(), order)

	saved, err := s.GetAnalysis(context.Background(), hit.ID)
	require.NoError(t, err, "a cache hit is stored under its own id")
	assert.Equal(t, hit.MatchScore, saved.MatchScore)
}

func TestAnalyze_PersistsToStore(t *testing.T) {
	s := store.NewMemoryStore()
	a := newAnalyzer(t, mock.NewMockProvider(), WithStore(s))

	got, err := a.Analyze(context.Background(), textFile("jane.txt", resumeText), "Backend Engineer", nil)
	require.NoError(t, err)

	saved, err := s.GetAnalysis(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.MatchScore, saved.MatchScore)
	assert.Equal(t, got.CandidateName, saved.CandidateName)
}

func TestAnalyzeMany_IsolatesFailures(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			a := newAnalyzer(t, mock.NewMockProvider(), WithBatchConcurrency(concurrency))

			files := []types.ResumeFile{
				textFile("a.txt", resumeText),
				{Filename: "broken.pdf", Data: []byte("definitely not a pdf"), ContentType: "application/pdf"},
				textFile("c.txt", resumeText),
			}
			entries := a.AnalyzeMany(context.Background(), files, "Backend Engineer")

			require.Len(t, entries, 3)
			assert.Equal(t, "a.txt", entries[0].Filename)
			assert.Equal(t, "broken.pdf", entries[1].Filename)
			assert.Equal(t, "c.txt", entries[2].Filename)

			assert.True(t, entries[0].Succeeded())
			assert.False(t, entries[1].Succeeded())
			assert.True(t, entries[2].Succeeded())

			require.NotNil(t, entries[1].Error)
			assert.Equal(t, "broken.pdf", entries[1].Error.Filename)
			assert.NotEmpty(t, entries[1].Error.Message)

			result := types.NewBatchResult("Backend Engineer", entries)
			assert.Equal(t, 2, result.Succeeded)
			assert.Equal(t, 1, result.Failed)
		})
	}
}

func TestAnalyzeManyObserved(t *testing.T) {
	a := newAnalyzer(t, mock.NewMockProvider(), WithBatchConcurrency(2))

	var mu sync.Mutex
	counts := map[int]int{}
	files := []types.ResumeFile{textFile("a.txt", resumeText), textFile("b.txt", resumeText)}

	entries := a.AnalyzeManyObserved(context.Background(), files, "", func(i int, _ types.ResumeFile) agents.Observer {
		return agents.ObserverFunc(func(string, types.AgentStatus) {
			mu.Lock()
			counts[i]++
			mu.Unlock()
		})
	})

	require.Len(t, entries, 2)
	assert.Equal(t, 21, counts[0])
	assert.Equal(t, 21, counts[1])
}

func TestAnalyzeMany_Empty(t *testing.T) {
	a := newAnalyzer(t, mock.NewMockProvider())
	assert.Empty(t, a.AnalyzeMany(context.Background(), nil, "role"))
}

func TestAnalyze_CancelledContextStillTerminal(t *testing.T) {
	a := newAnalyzer(t, mock.NewTimeoutProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := a.Analyze(ctx, textFile("jane.txt", resumeText), "", nil)
	require.NoError(t, err)
	for id, st := range got.AgentStatuses {
		assert.Equal(t, types.AgentError, st.State, id)
	}
	assert.Zero(t, got.Metadata.CompletedAgentCount)
}
