package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hirelens/internal/errors"
	"hirelens/internal/objectstore"
	"hirelens/internal/types"
)

// BatchAnalyzer analyzes a set of files for one role
type BatchAnalyzer interface {
	AnalyzeMany(ctx context.Context, files []types.ResumeFile, role string) []types.BatchEntry
}

// Publisher sends one message to the updates exchange
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Worker turns job messages into batch analyses
type Worker struct {
	analyzer  BatchAnalyzer
	objects   objectstore.Getter
	publisher Publisher
	logger    *errors.Logger
	now       func() time.Time
}

// NewWorker creates a worker. objects may be nil when every job carries
// its files inline.
func NewWorker(analyzer BatchAnalyzer, objects objectstore.Getter, publisher Publisher, logger *errors.Logger) *Worker {
	return &Worker{
		analyzer:  analyzer,
		objects:   objects,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle processes one message body. The returned error means the message
// is unusable and should not be redelivered; per-file failures are part
// of the published result instead.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var job AnalysisJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.LogError(err, "Undecodable job message")
		return fmt.Errorf("decode job: %w", err)
	}
	if err := job.validate(); err != nil {
		w.publish(ctx, JobUpdate{JobID: job.ID, Status: StatusFailed, Message: err.Error()})
		return err
	}

	w.logger.Info("Processing analysis job", "job_id", job.ID, "files", len(job.Files), "role", job.Role)
	w.publish(ctx, JobUpdate{JobID: job.ID, Status: StatusProcessing, Message: "analysis started"})

	entries := make([]types.BatchEntry, len(job.Files))
	var files []types.ResumeFile
	var slots []int
	for i, f := range job.Files {
		data, err := w.fetch(ctx, f)
		if err != nil {
			w.logger.LogError(err, "Failed to fetch job file", "job_id", job.ID, "file", f.name())
			entries[i] = types.BatchEntry{
				Filename: f.name(),
				Error:    &types.FileError{Filename: f.name(), Message: errors.Message(err)},
			}
			continue
		}
		files = append(files, types.ResumeFile{Filename: f.name(), Data: data, ContentType: f.ContentType})
		slots = append(slots, i)
	}

	if len(files) > 0 {
		for k, entry := range w.analyzer.AnalyzeMany(ctx, files, job.Role) {
			entries[slots[k]] = entry
		}
	}

	result := types.NewBatchResult(job.Role, entries)
	w.publish(ctx, JobUpdate{
		JobID:   job.ID,
		Status:  StatusCompleted,
		Message: fmt.Sprintf("analysis completed: %d succeeded, %d failed", result.Succeeded, result.Failed),
		Result:  result,
	})
	w.logger.Info("Analysis job completed", "job_id", job.ID, "succeeded", result.Succeeded, "failed", result.Failed)
	return nil
}

func (w *Worker) fetch(ctx context.Context, f JobFile) ([]byte, error) {
	if f.Data != "" {
		return decodeInline(f.Data)
	}
	if w.objects == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}
	return w.objects.Get(ctx, f.ObjectKey)
}

func (w *Worker) publish(ctx context.Context, update JobUpdate) {
	if w.publisher == nil || update.JobID == "" {
		return
	}
	update.Timestamp = w.now().UTC()
	body, err := json.Marshal(update)
	if err != nil {
		w.logger.LogError(err, "Failed to encode job update", "job_id", update.JobID)
		return
	}
	if err := w.publisher.Publish(ctx, RoutingKey(update.JobID), body); err != nil {
		w.logger.LogError(err, "Failed to publish job update", "job_id", update.JobID, "status", update.Status)
	}
}
