package cli

import (
	"fmt"

	"hirelens/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for resume analysis and outreach",
	Long: `Start an HTTP server exposing the analysis pipeline.

Available endpoints:
- POST /analyze: Analyze one resume (multipart "file" and "role")
- POST /analyze/stream: Same, streaming agent progress as Server-Sent Events
- POST /analyze/batch: Analyze several resumes (multipart "files") for one role
- GET /analyses: List stored analyses (role, minScore, limit, offset)
- GET /analyses/{id}: Fetch one stored analysis
- POST /outreach: Draft (and optionally send) an outreach email
- POST /email/send: Send an email
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS is enabled with server.tls.enabled or --cert-file and --key-file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, enables TLS)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, enables TLS)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())
	ctx := cmd.Context()

	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetString("port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("cert-file") || cmd.Flags().Changed("key-file") {
		cfg.Server.TLS.Enabled = true
		if cmd.Flags().Changed("cert-file") {
			cfg.Server.TLS.CertFile, _ = cmd.Flags().GetString("cert-file")
		}
		if cmd.Flags().Changed("key-file") {
			cfg.Server.TLS.KeyFile, _ = cmd.Flags().GetString("key-file")
		}
	}

	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	svc, err := newServices(ctx, cfg, logger, serviceOptions{store: true, outreach: true})
	if err != nil {
		return err
	}
	defer svc.Close()

	serverCfg := server.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		Version:      Version,
		TLSConfig:    cfg.Server.TLS,
		APIKeys:      cfg.Server.APIKeys,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		// Batch uploads carry several files; readUploads enforces the per-file limit
		MaxRequestSize: cfg.App.MaxFileSize * int64(max(1, cfg.Analysis.MaxBatchFiles)),
		RateLimit:      &cfg.Server.RateLimit,
	}
	models := make(map[string]server.ModelStatus, len(svc.models))
	for operation, provider := range svc.models {
		models[operation] = provider
	}
	deps := server.Dependencies{
		Analyzer:      svc.analyzer,
		Models:        models,
		Store:         svc.store,
		Composer:      svc.composer,
		Sender:        svc.sender,
		Observability: svc.om,
	}
	return server.NewServer(cfg, serverCfg, deps, logger).Start(ctx)
}
