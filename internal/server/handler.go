package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"hirelens/internal/errors"
	"hirelens/internal/progress"
	"hirelens/internal/types"
	"hirelens/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files
const multipartMemory = 32 << 20

// analyzeHandler analyzes one uploaded resume (multipart "file" and "role")
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer("hirelens.api").Start(r.Context(), "api.analyze")
	defer span.End()

	files, role, err := s.readUploads(r, "file")
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request", errors.Message(err), http.StatusBadRequest)
		return
	}
	file := files[0]

	span.SetAttributes(
		attribute.String("request.filename", file.Filename),
		attribute.Int("request.file_size", len(file.Data)),
		attribute.String("request.role", role),
	)

	analysis, err := s.deps.Analyzer.Analyze(ctx, file, role, nil)
	if err != nil {
		span.RecordError(err)
		s.writeAppError(w, "Failed to analyze resume", err)
		return
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("match_score", analysis.MatchScore),
		attribute.Int("completed_agents", analysis.Metadata.CompletedAgentCount),
	)
	writeJSON(w, http.StatusOK, analysis)
}

// analyzeStreamHandler analyzes one upload and pushes every agent state
// change as a Server-Sent Event, followed by a result or error event.
func (s *Server) analyzeStreamHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer("hirelens.api").Start(r.Context(), "api.analyze_stream")
	defer span.End()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorResponse(w, "Streaming unsupported", "response writer cannot flush", http.StatusInternalServerError)
		return
	}

	files, role, err := s.readUploads(r, "file")
	if err != nil {
		span.RecordError(err)
		writeErrorResponse(w, "Invalid request", errors.Message(err), http.StatusBadRequest)
		return
	}
	file := files[0]

	ids := make([]string, 0, len(s.deps.Analyzer.Agents()))
	for _, p := range s.deps.Analyzer.Agents() {
		ids = append(ids, p.ID)
	}
	tracker := progress.NewTracker(ids)
	events, cancel := tracker.Subscribe(4 * len(ids))
	defer cancel()

	type outcome struct {
		analysis *types.ResumeAnalysis
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		analysis, err := s.deps.Analyzer.Analyze(ctx, file, role, tracker)
		tracker.Close()
		done <- outcome{analysis, err}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "snapshot", tracker.Ordered())
	flusher.Flush()

	// Closed by tracker.Close once the run is over
	for ev := range events {
		writeEvent(w, "status", ev)
		flusher.Flush()
	}

	res := <-done
	if res.err != nil {
		span.RecordError(res.err)
		writeEvent(w, "error", ErrorResponse{Error: "Failed to analyze resume", Message: errors.Message(res.err)})
	} else {
		span.SetAttributes(attribute.Int("match_score", res.analysis.MatchScore))
		writeEvent(w, "result", res.analysis)
	}
	flusher.Flush()
}

// analyzeBatchHandler analyzes every uploaded "files" part against one role
func (s *Server) analyzeBatchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer("hirelens.api").Start(r.Context(), "api.analyze_batch")
	defer span.End()

	files, role, err := s.readUploads(r, "files")
	if err != nil {
		span.RecordError(err)
		writeErrorResponse(w, "Invalid request", errors.Message(err), http.StatusBadRequest)
		return
	}
	if limit := s.maxBatchFiles(); limit > 0 && len(files) > limit {
		writeErrorResponse(w, "Too many files",
			fmt.Sprintf("a batch may contain at most %d files", limit), http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.Int("request.file_count", len(files)),
		attribute.String("request.role", role),
	)

	result := types.NewBatchResult(role, s.deps.Analyzer.AnalyzeMany(ctx, files, role))

	span.SetAttributes(
		attribute.Int("succeeded", result.Succeeded),
		attribute.Int("failed", result.Failed),
	)
	writeJSON(w, http.StatusOK, result)
}

// readUploads parses a multipart form and returns the files under field
// and the "role" value. Every file must be within the configured size
// limit.
func (s *Server) readUploads(r *http.Request, field string) ([]types.ResumeFile, string, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return nil, "", fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return nil, "", fmt.Errorf("expected a multipart/form-data body: %w", err)
	}

	role := strings.TrimSpace(r.FormValue("role"))
	if role == "" {
		return nil, "", fmt.Errorf("role field is required")
	}

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, "", fmt.Errorf("%s field is required", field)
	}

	files := make([]types.ResumeFile, 0, len(headers))
	for _, fh := range headers {
		if limit := s.maxFileSize(); limit > 0 && fh.Size > limit {
			return nil, "", fmt.Errorf("file %s is %s, larger than the %s limit",
				fh.Filename, utils.FormatFileSize(fh.Size), utils.FormatFileSize(limit))
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, "", fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = utils.ContentTypeFor(fh.Filename)
		}
		files = append(files, types.ResumeFile{
			Filename:    fh.Filename,
			Data:        data,
			ContentType: contentType,
		})
	}
	return files, role, nil
}

func (s *Server) maxFileSize() int64 {
	if s.AppConfig == nil {
		return 0
	}
	return s.AppConfig.App.MaxFileSize
}

func (s *Server) maxBatchFiles() int {
	if s.AppConfig == nil {
		return 0
	}
	return s.AppConfig.Analysis.MaxBatchFiles
}

// writeEvent writes one Server-Sent Event with a JSON payload
func writeEvent(w io.Writer, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		data, _ = json.Marshal(ErrorResponse{Error: "Failed to encode event", Message: err.Error()})
		event = "error"
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
