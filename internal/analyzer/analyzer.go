// Package analyzer is the call surface of the resume analysis pipeline:
// extract, run the agents, derive structured fields and assemble the
// final record.
package analyzer

import (
	"context"
	stderrors "errors"
	"time"

	"hirelens/internal/agents"
	"hirelens/internal/cache"
	"hirelens/internal/errors"
	"hirelens/internal/extraction"
	"hirelens/internal/heuristics"
	"hirelens/internal/observability"
	"hirelens/internal/store"
	"hirelens/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Analyzer produces ResumeAnalysis records. It is safe for concurrent use.
type Analyzer struct {
	extractor        *extraction.Extractor
	orchestrator     *agents.Orchestrator
	logger           *errors.Logger
	cache            *cache.AnalysisCache
	store            store.Store
	metrics          *observability.Metrics
	batchConcurrency int

	now   func() time.Time
	newID func() string
}

// Option configures optional collaborators
type Option func(*Analyzer)

// WithCache serves repeated (file, role) pairs from c
func WithCache(c *cache.AnalysisCache) Option {
	return func(a *Analyzer) { a.cache = c }
}

// WithStore persists every successful analysis to s
func WithStore(s store.Store) Option {
	return func(a *Analyzer) { a.store = s }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithBatchConcurrency bounds how many files AnalyzeMany works on at once.
// Values below 1 mean one at a time.
func WithBatchConcurrency(n int) Option {
	return func(a *Analyzer) { a.batchConcurrency = n }
}

// New creates an analyzer
func New(extractor *extraction.Extractor, orchestrator *agents.Orchestrator, logger *errors.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		extractor:        extractor,
		orchestrator:     orchestrator,
		logger:           logger,
		batchConcurrency: 1,
		now:              time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.batchConcurrency < 1 {
		a.batchConcurrency = 1
	}
	return a
}

// Agents returns the personas run for every resume
func (a *Analyzer) Agents() []agents.Persona {
	return a.orchestrator.Personas()
}

// Analyze runs the full pipeline for one file. The only error returned is
// an extraction error; agent failures degrade fields instead.
func (a *Analyzer) Analyze(ctx context.Context, file types.ResumeFile, role string, observer agents.Observer) (*types.ResumeAnalysis, error) {
	ctx, span := otel.Tracer("hirelens.analyzer").Start(ctx, "analyzer.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("resume.filename", file.Filename),
		attribute.String("resume.target_role", role),
	)

	start := a.now()

	if cached := a.lookup(ctx, file, role); cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		a.replay(cached, observer)
		a.metrics.RecordAnalysis(ctx, "cached", a.now().Sub(start), cached.MatchScore)
		a.persist(ctx, cached)
		return cached, nil
	}

	doc, err := a.extractor.Extract(ctx, file)
	if err != nil {
		span.RecordError(err)
		var appErr *errors.AppError
		code := errors.ErrCodeExtractionFailed
		if stderrors.As(err, &appErr) {
			code = appErr.Code
		}
		a.metrics.RecordExtractionError(ctx, code)
		a.metrics.RecordAnalysis(ctx, "failed", a.now().Sub(start), 0)
		return nil, err
	}

	run := a.orchestrator.Run(ctx, doc.Augmented(), role, observer)
	for id, st := range run.Statuses {
		a.metrics.RecordAgent(ctx, id, string(st.State), time.Duration(st.ElapsedMillis)*time.Millisecond)
	}

	fields := heuristics.Extract(heuristics.Sources{
		ResumeText:          doc.Text,
		Filename:            file.Filename,
		DocumentProcessor:   run.Text(agents.DocumentProcessor),
		RoleMatching:        run.Text(agents.RoleMatching),
		SkillsAnalysis:      run.Text(agents.SkillsAnalysis),
		ExperienceReview:    run.Text(agents.ExperienceReview),
		GrowthAnalysis:      run.Text(agents.GrowthAnalysis),
		StrengthsAssessment: run.Text(agents.StrengthsAssessment),
		FinalSynthesis:      run.Text(agents.FinalSynthesis),
		GrowthFailed:        run.Failed(agents.GrowthAnalysis),
	})

	elapsed := a.now().Sub(start)
	analysis := &types.ResumeAnalysis{
		ID:                   a.newID(),
		Filename:             file.Filename,
		CandidateName:        fields.CandidateName,
		TargetRole:           role,
		Skills:               fields.Skills,
		ExperienceSummary:    fields.ExperienceSummary,
		EducationSummary:     fields.EducationSummary,
		Achievements:         fields.Achievements,
		TechnicalProficiency: fields.TechnicalProficiency,
		RoleMatches:          fields.RoleMatches,
		ImprovementAreas:     fields.ImprovementAreas,
		Pros:                 fields.Pros,
		Cons:                 fields.Cons,
		Summary:              fields.Summary,
		MatchScore:           heuristics.MatchScore(run.Results),
		Contact:              doc.Contact(),
		AgentResults:         run.Results,
		AgentStatuses:        run.Statuses,
		Metadata: types.AnalysisMetadata{
			TotalProcessingTimeMillis: elapsed.Milliseconds(),
			CompletedAgentCount:       run.Completed(),
			TotalAgentCount:           len(run.Statuses),
		},
		CreatedAt: a.now().UTC(),
	}

	span.SetAttributes(
		attribute.Int("analysis.match_score", analysis.MatchScore),
		attribute.Int("analysis.completed_agents", analysis.Metadata.CompletedAgentCount),
	)
	a.metrics.RecordAnalysis(ctx, "success", elapsed, analysis.MatchScore)

	a.logger.Info("Resume analyzed",
		"analysis_id", analysis.ID,
		"filename", file.Filename,
		"candidate", analysis.CandidateName,
		"match_score", analysis.MatchScore,
		"completed_agents", analysis.Metadata.CompletedAgentCount,
		"elapsed_ms", elapsed.Milliseconds())

	if run.Completed() == len(run.Statuses) && ctx.Err() == nil {
		a.remember(ctx, file, role, analysis)
	}
	a.persist(ctx, analysis)
	return analysis, nil
}

// ObserverFunc supplies the observer for the file at index i of a batch.
// It may return nil.
type ObserverFunc func(i int, file types.ResumeFile) agents.Observer

// AnalyzeMany analyzes every file and returns one entry per file in input
// order. A file that fails becomes a FileError entry; the batch goes on.
func (a *Analyzer) AnalyzeMany(ctx context.Context, files []types.ResumeFile, role string) []types.BatchEntry {
	return a.AnalyzeManyObserved(ctx, files, role, nil)
}

// AnalyzeManyObserved is AnalyzeMany with a per-file progress observer
func (a *Analyzer) AnalyzeManyObserved(ctx context.Context, files []types.ResumeFile, role string, observe ObserverFunc) []types.BatchEntry {
	entries := make([]types.BatchEntry, len(files))

	var g errgroup.Group
	g.SetLimit(a.batchConcurrency)
	for i, file := range files {
		g.Go(func() error {
			var observer agents.Observer
			if observe != nil {
				observer = observe(i, file)
			}
			entries[i] = a.analyzeEntry(ctx, file, role, observer)
			return nil
		})
	}
	_ = g.Wait()

	return entries
}

func (a *Analyzer) analyzeEntry(ctx context.Context, file types.ResumeFile, role string, observer agents.Observer) types.BatchEntry {
	entry := types.BatchEntry{Filename: file.Filename}
	analysis, err := a.Analyze(ctx, file, role, observer)
	if err != nil {
		a.logger.LogError(err, "Resume analysis failed", "filename", file.Filename)
		entry.Error = &types.FileError{Filename: file.Filename, Message: errors.Message(err)}
		return entry
	}
	entry.Analysis = analysis
	return entry
}

// lookup returns a cached analysis as a new record: it gets its own id and
// creation time, so it can be stored and fetched like any other run.
func (a *Analyzer) lookup(ctx context.Context, file types.ResumeFile, role string) *types.ResumeAnalysis {
	if a.cache == nil {
		return nil
	}
	cached, found, err := a.cache.Get(ctx, file.Data, role)
	if err != nil {
		a.logger.Warn("Analysis cache lookup failed", "filename", file.Filename, "error", err)
		return nil
	}
	a.metrics.RecordCacheLookup(ctx, found)
	if !found {
		return nil
	}
	a.logger.Debug("Serving analysis from cache", "cached_id", cached.ID, "filename", file.Filename)
	cached.ID = a.newID()
	cached.Filename = file.Filename
	cached.CreatedAt = a.now().UTC()
	return cached
}

// replay reports the cached agent statuses to observer in catalog order
func (a *Analyzer) replay(analysis *types.ResumeAnalysis, observer agents.Observer) {
	if observer == nil {
		return
	}
	for _, p := range a.orchestrator.Personas() {
		if st, ok := analysis.AgentStatuses[p.ID]; ok {
			observer.OnStatus(p.ID, st)
		}
	}
}

// remember caches analysis. Only runs in which every agent completed
// belong in the cache.
func (a *Analyzer) remember(ctx context.Context, file types.ResumeFile, role string, analysis *types.ResumeAnalysis) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Put(ctx, file.Data, role, analysis); err != nil {
		a.logger.Warn("Failed to cache analysis", "analysis_id", analysis.ID, "error", err)
	}
}

func (a *Analyzer) persist(ctx context.Context, analysis *types.ResumeAnalysis) {
	if a.store == nil {
		return
	}
	if err := a.store.SaveAnalysis(ctx, analysis); err != nil {
		a.logger.LogError(err, "Failed to persist analysis", "analysis_id", analysis.ID)
	}
}
