package observability

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"hirelens/internal/config"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// PrometheusExporter exposes the hirelens instruments, plus Go runtime and
// process collectors, on a registry of its own.
type PrometheusExporter struct {
	Reader   sdkmetric.Reader
	Registry *prom.Registry
	Handler  http.Handler
	endpoint string
}

// NewPrometheusExporter builds the metric reader and scrape handler. The
// default global registry is left untouched.
func NewPrometheusExporter(cfg PrometheusConfig) (*PrometheusExporter, error) {
	reg := prom.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("failed to register Go collector: %w", err)
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: "hirelens"})); err != nil {
		return nil, fmt.Errorf("failed to register process collector: %w", err)
	}

	reader, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	return &PrometheusExporter{
		Reader:   reader,
		Registry: reg,
		Handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}),
		endpoint: endpoint,
	}, nil
}

// Mux routes the scrape endpoint to the exporter's handler
func (e *PrometheusExporter) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(e.endpoint, e.Handler)
	return mux
}

// Serve binds addr and serves the scrape endpoint in the background. A bind
// failure is returned; the caller shuts the server down.
func (e *PrometheusExporter) Serve(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}

	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           e.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.Serve(ln) }()
	return server, nil
}

// shutdownServer adapts an http.Server to the manager's shutdown list
func shutdownServer(server *http.Server) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := server.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// GetPrometheusConfig creates Prometheus configuration from provided config
func GetPrometheusConfig(cfg *config.Config) PrometheusConfig {
	if cfg != nil {
		return PrometheusConfig{
			Enabled:  cfg.Observability.Prometheus.Enabled,
			Endpoint: cfg.Observability.Prometheus.Endpoint,
			Port:     cfg.Observability.Prometheus.Port,
		}
	}

	return PrometheusConfig{
		Enabled:  false,
		Endpoint: "/metrics",
		Port:     "9090",
	}
}
