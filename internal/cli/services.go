package cli

import (
	"context"
	"fmt"
	"time"

	"hirelens/internal/agents"
	"hirelens/internal/ai"
	"hirelens/internal/ai/mock"
	"hirelens/internal/analyzer"
	"hirelens/internal/cache"
	"hirelens/internal/config"
	"hirelens/internal/email"
	"hirelens/internal/errors"
	"hirelens/internal/extraction"
	"hirelens/internal/observability"
	"hirelens/internal/store"
)

// services holds the collaborators shared by every command
type services struct {
	om       *observability.ObservabilityManager
	metrics  *observability.Metrics
	analyzer *analyzer.Analyzer
	composer *email.Composer
	sender   email.Sender
	store    store.Store
	// models maps an operation to its instrumented provider
	models   map[string]*ai.InstrumentedProvider

	closers []func()
	logger  *errors.Logger
}

// serviceOptions selects the optional backends a command needs
type serviceOptions struct {
	// Persist analyses to Postgres when enabled in config; otherwise in memory.
	store bool
	// Build the outreach composer and mail sender.
	outreach bool
}

// newProvider returns the completion provider for one operation. The
// "mock" provider answers every prompt locally.
func newProvider(opCfg *config.OperationAIConfig, operation string, logger *errors.Logger, metrics *observability.Metrics) (ai.Provider, error) {
	if opCfg.Provider == "mock" {
		logger.Info("Using mock AI provider", "operation", operation)
		return mock.NewMockProvider(), nil
	}
	return ai.NewProvider(opCfg, operation, logger, metrics)
}

// newServices wires the analysis pipeline and its optional backends from cfg
func newServices(ctx context.Context, cfg *config.Config, logger *errors.Logger, opts serviceOptions) (*services, error) {
	s := &services{logger: logger, models: make(map[string]*ai.InstrumentedProvider)}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	s.om = om
	s.metrics = om.GetMetrics()
	s.closers = append(s.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	})

	analysisCfg := cfg.GetAnalysisConfig()
	provider, err := newProvider(&analysisCfg, "analysis", logger, s.metrics)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.closers = append(s.closers, func() { _ = provider.Close() })

	s.models["analysis"] = ai.Instrument(provider, "analysis", s.metrics)
	invoker := agents.NewInvoker(s.models["analysis"], cfg.Analysis.AgentTimeout, logger)
	personas := agents.WithOverrides(cfg.PersonaOverrides())
	orchestrator := agents.NewOrchestrator(invoker, personas, cfg.Analysis.AgentConcurrency, logger)

	analyzerOpts := []analyzer.Option{
		analyzer.WithMetrics(s.metrics),
		analyzer.WithBatchConcurrency(cfg.Analysis.BatchConcurrency),
	}

	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Cache.URL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Analysis cache unreachable, continuing without it", "error", err)
			_ = redisCache.Close()
		} else {
			analysisCache := cache.NewAnalysisCache(redisCache, cfg.Cache.TTL, cfg.Cache.KeyPrefix)
			s.closers = append(s.closers, func() { _ = analysisCache.Close() })
			analyzerOpts = append(analyzerOpts, analyzer.WithCache(analysisCache))
		}
	}

	if opts.store {
		if cfg.Store.Enabled {
			pg, err := store.Open(ctx, cfg.Store)
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("failed to open analysis store: %w", err)
			}
			s.store = pg
		} else {
			s.store = store.NewMemoryStore()
		}
		s.closers = append(s.closers, s.store.Close)
		analyzerOpts = append(analyzerOpts, analyzer.WithStore(s.store))
	}

	s.analyzer = analyzer.New(extraction.NewExtractor(logger), orchestrator, logger, analyzerOpts...)

	if opts.outreach {
		outreachCfg := cfg.GetOutreachConfig()
		outreachProvider, err := newProvider(&outreachCfg, "outreach", logger, s.metrics)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = outreachProvider.Close() })
		s.models["outreach"] = ai.Instrument(outreachProvider, "outreach", s.metrics)
		s.composer = email.NewComposer(s.models["outreach"], logger)
		s.sender = email.WithMetrics(email.NewSender(cfg.Email, logger), s.metrics)
	}

	return s, nil
}

// Close releases everything newServices opened, newest first
func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// agentNames maps agent ids to display names for progress output
func (s *services) agentNames() map[string]string {
	names := make(map[string]string)
	for _, p := range s.analyzer.Agents() {
		names[p.ID] = p.Name
	}
	return names
}
