package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"hirelens/internal/types"
)

// MemoryStore keeps analyses in process. The server uses it when no
// database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	analyses map[string][]byte
	index    map[string]AnalysisSummary
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		analyses: make(map[string][]byte),
		index:    make(map[string]AnalysisSummary),
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}

// SaveAnalysis stores a copy of a
func (s *MemoryStore) SaveAnalysis(_ context.Context, a *types.ResumeAnalysis) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[a.ID] = doc
	s.index[a.ID] = Summarize(a)
	return nil
}

func (s *MemoryStore) GetAnalysis(_ context.Context, id string) (*types.ResumeAnalysis, error) {
	s.mu.RLock()
	doc, ok := s.analyses[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var a types.ResumeAnalysis
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &a, nil
}

func (s *MemoryStore) ListAnalyses(_ context.Context, f ListFilter) ([]AnalysisSummary, error) {
	s.mu.RLock()
	all := make([]AnalysisSummary, 0, len(s.index))
	for _, sum := range s.index {
		if f.Role != "" && !strings.EqualFold(sum.TargetRole, f.Role) {
			continue
		}
		if sum.MatchScore < f.MinScore {
			continue
		}
		all = append(all, sum)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := min(max(f.Offset, 0), len(all))
	end := min(start+f.limit(), len(all))
	return all[start:end], nil
}
