package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hirelens/internal/ai"
	"hirelens/internal/errors"
	"hirelens/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
)

const healthCheckTimeout = 5 * time.Second

var validate = validator.New()

// healthHandler reports liveness plus the state of the analysis store and
// of each operation's model. Any failing check makes the service degraded.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	healthy := true
	response := map[string]any{
		"service": "hirelens",
		"version": s.Version,
		"agents":  len(s.deps.Analyzer.Agents()),
	}

	if s.deps.Store != nil {
		if err := s.deps.Store.Ping(ctx); err != nil {
			healthy = false
			response["store"] = map[string]any{"available": false, "error": err.Error()}
		} else {
			response["store"] = map[string]any{"available": true}
		}
	}

	if len(s.deps.Models) > 0 {
		models := make(map[string]*ai.ModelInfo, len(s.deps.Models))
		for operation, model := range s.deps.Models {
			info := model.GetModelInfo(ctx)
			models[operation] = info
			if info == nil || !info.Available {
				healthy = false
			}
		}
		response["models"] = models
	}

	status := http.StatusOK
	response["status"] = "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		response["status"] = "degraded"
	}
	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	personas := s.deps.Analyzer.Agents()
	agentList := make([]map[string]any, 0, len(personas))
	for _, p := range personas {
		agentList = append(agentList, map[string]any{"id": p.ID, "name": p.Name})
	}

	response := map[string]any{
		"service":        "hirelens",
		"version":        s.Version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_file_size_bytes":    s.maxFileSize(),
			"max_batch_files":        s.maxBatchFiles(),
		},
		"agents": agentList,
	}

	breakers := make(map[string][]ai.BreakerStats, len(s.deps.Models))
	for operation, model := range s.deps.Models {
		stats := model.BreakerStats()
		if stats == nil {
			stats = []ai.BreakerStats{}
		}
		breakers[operation] = stats
	}
	response["circuit_breakers"] = breakers

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// listAnalysesHandler lists stored analyses, newest first. Query
// parameters: role, minScore, limit, offset.
func (s *Server) listAnalysesHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeErrorResponse(w, "Analysis store unavailable", "persistence is not configured", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	filter := store.ListFilter{Role: strings.TrimSpace(q.Get("role"))}
	for name, target := range map[string]*int{
		"minScore": &filter.MinScore,
		"limit":    &filter.Limit,
		"offset":   &filter.Offset,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorResponse(w, "Invalid query parameter",
				fmt.Sprintf("%s must be a non-negative integer", name), http.StatusBadRequest)
			return
		}
		*target = n
	}

	summaries, err := s.deps.Store.ListAnalyses(r.Context(), filter)
	if err != nil {
		s.Logger.LogError(err, "Failed to list analyses")
		writeErrorResponse(w, "Failed to list analyses", err.Error(), http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []store.AnalysisSummary{}
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Analyses: summaries,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// getAnalysisHandler returns one stored analysis by id
func (s *Server) getAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeErrorResponse(w, "Analysis store unavailable", "persistence is not configured", http.StatusServiceUnavailable)
		return
	}

	analysis, err := s.deps.Store.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeAppError(w, "Failed to load analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// outreachHandler drafts an outreach email for a stored analysis and
// optionally sends it
func (s *Server) outreachHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer("hirelens.api").Start(r.Context(), "api.outreach")
	defer span.End()

	var req OutreachRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if s.deps.Composer == nil || s.deps.Store == nil {
		writeErrorResponse(w, "Outreach unavailable", "outreach needs the analysis store and composer", http.StatusServiceUnavailable)
		return
	}

	analysis, err := s.deps.Store.GetAnalysis(ctx, req.AnalysisID)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, "Failed to load analysis", err)
		return
	}

	company := req.Company
	if company == "" && s.AppConfig != nil {
		company = s.AppConfig.Email.Company
	}

	draft, err := s.deps.Composer.Compose(ctx, analysis, req.Role, company)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, "Failed to draft outreach email", err)
		return
	}

	if req.SendTo != "" {
		draft.To = req.SendTo
	}
	if req.Send || req.SendTo != "" {
		if draft.To == "" {
			writeErrorResponse(w, "No recipient", "the resume has no email address; set sendTo", http.StatusBadRequest)
			return
		}
		draft.Sent = s.deps.Sender.Send(ctx, draft.To, draft.Subject, draft.Body)
	}

	span.SetAttributes(
		attribute.String("analysis.id", analysis.ID),
		attribute.Bool("sent", draft.Sent),
	)
	writeJSON(w, http.StatusOK, draft)
}

// sendEmailHandler delivers a caller-written email
func (s *Server) sendEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req SendEmailRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	sent := s.deps.Sender.Send(r.Context(), req.To, req.Subject, req.Body)
	status := http.StatusOK
	if !sent {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, SendEmailResponse{Sent: sent})
}

// parseJSONRequest decodes and validates a JSON request body
func parseJSONRequest(r *http.Request, v any) error {
	if mediaType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";"); strings.TrimSpace(mediaType) != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	if err := validate.Struct(v); err != nil {
		return validationMessage(err)
	}
	return nil
}

// validationMessage turns validator errors into one readable error
func validationMessage(err error) error {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", lowerFirst(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, ", "))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// writeAppError maps an error to a status code by its AppError type
func (s *Server) writeAppError(w http.ResponseWriter, title string, err error) {
	status := http.StatusInternalServerError
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.IsType(err, errors.ErrorTypeValidation):
		status = http.StatusBadRequest
	case errors.IsType(err, errors.ErrorTypeExtraction):
		status = http.StatusUnprocessableEntity
	case errors.IsType(err, errors.ErrorTypeAI):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, title)
	}
	writeErrorResponse(w, title, errors.Message(err), status)
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
