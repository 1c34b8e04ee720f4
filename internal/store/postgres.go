package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"hirelens/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// PostgresStore implements Store using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the analyses table and its indexes if missing
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// SaveAnalysis inserts analysis, replacing any row with the same id
func (s *PostgresStore) SaveAnalysis(ctx context.Context, a *types.ResumeAnalysis) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, filename, candidate_name, target_role, match_score,
		                       completed_count, total_count, analysis, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		     filename = EXCLUDED.filename,
		     candidate_name = EXCLUDED.candidate_name,
		     target_role = EXCLUDED.target_role,
		     match_score = EXCLUDED.match_score,
		     completed_count = EXCLUDED.completed_count,
		     total_count = EXCLUDED.total_count,
		     analysis = EXCLUDED.analysis`,
		a.ID, a.Filename, a.CandidateName, a.TargetRole, a.MatchScore,
		a.Metadata.CompletedAgentCount, a.Metadata.TotalAgentCount, doc, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// GetAnalysis loads one analysis by id
func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*types.ResumeAnalysis, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT analysis FROM analyses WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	var a types.ResumeAnalysis
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &a, nil
}

// ListAnalyses returns summaries, newest first
func (s *PostgresStore) ListAnalyses(ctx context.Context, f ListFilter) ([]AnalysisSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, filename, candidate_name, target_role, match_score,
		        completed_count, total_count, created_at
		 FROM analyses
		 WHERE ($1 = '' OR lower(target_role) = lower($1)) AND match_score >= $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		f.Role, f.MinScore, f.limit(), max(f.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	out := []AnalysisSummary{}
	for rows.Next() {
		var a AnalysisSummary
		if err := rows.Scan(&a.ID, &a.Filename, &a.CandidateName, &a.TargetRole, &a.MatchScore,
			&a.CompletedCount, &a.TotalCount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
