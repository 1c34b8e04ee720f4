// Package store persists finished analyses.
package store

import (
	"context"
	"errors"
	"time"

	"hirelens/internal/types"
)

var ErrNotFound = errors.New("analysis not found")

// Store is the data access interface for analyses
type Store interface {
	Ping(ctx context.Context) error
	SaveAnalysis(ctx context.Context, analysis *types.ResumeAnalysis) error
	GetAnalysis(ctx context.Context, id string) (*types.ResumeAnalysis, error)
	ListAnalyses(ctx context.Context, filter ListFilter) ([]AnalysisSummary, error)
	Close()
}

// ListFilter narrows ListAnalyses. Role matches case-insensitively.
type ListFilter struct {
	Role     string
	MinScore int
	Limit    int
	Offset   int
}

// Page sizes for ListAnalyses
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

func (f ListFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}

// AnalysisSummary is the listing view of a stored analysis
type AnalysisSummary struct {
	ID             string    `json:"id"`
	Filename       string    `json:"filename"`
	CandidateName  string    `json:"candidateName"`
	TargetRole     string    `json:"targetRole"`
	MatchScore     int       `json:"matchScore"`
	CompletedCount int       `json:"completedAgentCount"`
	TotalCount     int       `json:"totalAgentCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summarize returns the listing view of an analysis
func Summarize(a *types.ResumeAnalysis) AnalysisSummary {
	return AnalysisSummary{
		ID:             a.ID,
		Filename:       a.Filename,
		CandidateName:  a.CandidateName,
		TargetRole:     a.TargetRole,
		MatchScore:     a.MatchScore,
		CompletedCount: a.Metadata.CompletedAgentCount,
		TotalCount:     a.Metadata.TotalAgentCount,
		CreatedAt:      a.CreatedAt,
	}
}
