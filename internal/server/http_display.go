package server

import (
	"fmt"
	"io"
	"os"
)

// displayServerInfo shows server configuration information on stderr
func (s *Server) displayServerInfo(addr string) {
	w := os.Stderr
	scheme := "http"
	if s.TLSConfig.Enabled {
		scheme = "https"
	}
	_, _ = fmt.Fprintf(w, "Listening on %s://%s\n", scheme, addr)

	s.displayEndpoints(w)
	s.displayAuthInfo(w)
	s.displayRequestLimitInfo(w)
	s.displayRateLimitInfo(w)
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Available endpoints:")
	_, _ = fmt.Fprintln(w, "  GET  /health          - Health check")
	_, _ = fmt.Fprintln(w, "  GET  /stats           - Server statistics")
	_, _ = fmt.Fprintln(w, "  POST /analyze         - Analyze one resume (requires API key)")
	_, _ = fmt.Fprintln(w, "  POST /analyze/stream  - Analyze with live agent progress (SSE)")
	_, _ = fmt.Fprintln(w, "  POST /analyze/batch   - Analyze several resumes for one role")
	_, _ = fmt.Fprintln(w, "  GET  /analyses        - List stored analyses")
	_, _ = fmt.Fprintln(w, "  GET  /analyses/{id}   - Fetch one stored analysis")
	_, _ = fmt.Fprintln(w, "  POST /outreach        - Draft an outreach email")
	_, _ = fmt.Fprintln(w, "  POST /email/send      - Send an email")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo(w io.Writer) {
	if len(s.APIKeys) > 0 {
		_, _ = fmt.Fprintf(w, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		_, _ = fmt.Fprintln(w, "Include 'X-API-Key: <your-key>' header in API requests")
	} else {
		_, _ = fmt.Fprintln(w, "API authentication: DISABLED (no API keys configured)")
		_, _ = fmt.Fprintln(w, "WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo(w io.Writer) {
	if s.MaxRequestSize > 0 {
		_, _ = fmt.Fprintf(w, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		_, _ = fmt.Fprintln(w, "Request size limit: DISABLED")
		_, _ = fmt.Fprintln(w, "WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo(w io.Writer) {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		_, _ = fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			_, _ = fmt.Fprintln(w, "  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			_, _ = fmt.Fprintln(w, "  - Per IP address rate limiting enabled")
		}
	} else {
		_, _ = fmt.Fprintln(w, "Rate limiting: DISABLED")
		_, _ = fmt.Fprintln(w, "WARNING: No rate limiting configured!")
	}
}
