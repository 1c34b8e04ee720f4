package server

import (
	"context"
	"time"

	"hirelens/internal/agents"
	"hirelens/internal/ai"
	"hirelens/internal/config"
	"hirelens/internal/email"
	hirelensErrors "hirelens/internal/errors"
	"hirelens/internal/observability"
	"hirelens/internal/store"
	"hirelens/internal/types"
)

// OutreachRequest asks for an outreach email about a stored analysis
type OutreachRequest struct {
	AnalysisID string `json:"analysisId" validate:"required"`
	Role       string `json:"role"`
	Company    string `json:"company"`
	Send       bool   `json:"send"`
	SendTo     string `json:"sendTo" validate:"omitempty,email"`
}

// SendEmailRequest is the body of POST /email/send
type SendEmailRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

// SendEmailResponse reports whether the transport accepted the email
type SendEmailResponse struct {
	Sent bool `json:"sent"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ListResponse is the body of GET /analyses
type ListResponse struct {
	Analyses []store.AnalysisSummary `json:"analyses"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
}

// Analyzer is the analysis pipeline the handlers drive
type Analyzer interface {
	Analyze(ctx context.Context, file types.ResumeFile, role string, observer agents.Observer) (*types.ResumeAnalysis, error)
	AnalyzeMany(ctx context.Context, files []types.ResumeFile, role string) []types.BatchEntry
	Agents() []agents.Persona
}

// Composer drafts outreach emails
type Composer interface {
	Compose(ctx context.Context, analysis *types.ResumeAnalysis, role, company string) (*types.OutreachEmail, error)
}

// ModelStatus reports on the model behind one operation
type ModelStatus interface {
	GetModelInfo(ctx context.Context) *ai.ModelInfo
	BreakerStats() []ai.BreakerStats
}

// Dependencies are the collaborators behind the API
type Dependencies struct {
	Analyzer      Analyzer
	Models        map[string]ModelStatus // keyed by operation
	Store         store.Store
	Composer      Composer
	Sender        email.Sender
	Observability *observability.ObservabilityManager
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	deps    Dependencies
	om      *observability.ObservabilityManager
	metrics *observability.Metrics
	started time.Time

	// Logger
	Logger *hirelensErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *hirelensErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	om := deps.Observability
	if om == nil {
		om, _ = observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, appCfg)
	}
	if deps.Sender == nil {
		deps.Sender = email.NewLogSender(logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		deps:           deps,
		om:             om,
		metrics:        om.GetMetrics(),
		started:        time.Now(),
		Logger:         logger,
	}
}
