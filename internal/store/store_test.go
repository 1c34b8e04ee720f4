package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hirelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysis(id, role string, score int, at time.Time) *types.ResumeAnalysis {
	return &types.ResumeAnalysis{
		ID:            id,
		Filename:      id + ".pdf",
		CandidateName: "Candidate " + id,
		TargetRole:    role,
		Skills:        []string{"Go"},
		MatchScore:    score,
		Metadata:      types.AnalysisMetadata{CompletedAgentCount: 7, TotalAgentCount: 7},
		CreatedAt:     at,
	}
}

func TestListFilterLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultListLimit},
		{-1, DefaultListLimit},
		{10, 10},
		{MaxListLimit + 1, MaxListLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ListFilter{Limit: tt.limit}.limit(), "limit %d", tt.limit)
	}
}

func TestSummarize(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	got := Summarize(analysis("a1", "Backend Engineer", 84, at))

	assert.Equal(t, AnalysisSummary{
		ID:             "a1",
		Filename:       "a1.pdf",
		CandidateName:  "Candidate a1",
		TargetRole:     "Backend Engineer",
		MatchScore:     84,
		CompletedCount: 7,
		TotalCount:     7,
		CreatedAt:      at,
	}, got)
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	a := analysis("a1", "Backend Engineer", 80, time.Now().UTC())

	require.NoError(t, s.SaveAnalysis(ctx, a))
	a.Skills[0] = "mutated"

	got, err := s.GetAnalysis(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, got.Skills, "store keeps its own copy")
	assert.Equal(t, 80, got.MatchScore)

	_, err = s.GetAnalysis(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SaveAnalysis(ctx, analysis("a1", "Backend Engineer", 70, now)))
	require.NoError(t, s.SaveAnalysis(ctx, analysis("a1", "Backend Engineer", 90, now)))

	list, err := s.ListAnalyses(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 90, list[0].MatchScore)
}

func TestMemoryStore_ListFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 6 {
		role := "Backend Engineer"
		if i%2 == 1 {
			role = "Data Scientist"
		}
		a := analysis(fmt.Sprintf("a%d", i), role, 60+i*5, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, s.SaveAnalysis(ctx, a))
	}

	all, err := s.ListAnalyses(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "a5", all[0].ID, "newest first")
	assert.Equal(t, "a0", all[5].ID)

	backend, err := s.ListAnalyses(ctx, ListFilter{Role: "backend engineer"})
	require.NoError(t, err)
	assert.Len(t, backend, 3)

	strong, err := s.ListAnalyses(ctx, ListFilter{MinScore: 75})
	require.NoError(t, err)
	assert.Len(t, strong, 3)
	for _, a := range strong {
		assert.GreaterOrEqual(t, a.MatchScore, 75)
	}

	page, err := s.ListAnalyses(ctx, ListFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a3", page[0].ID)
	assert.Equal(t, "a2", page[1].ID)

	past, err := s.ListAnalyses(ctx, ListFilter{Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestMemoryStore_PingClose(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Ping(context.Background()))
	s.Close()
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
