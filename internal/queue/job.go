// Package queue consumes analysis jobs from RabbitMQ and publishes their
// progress to a topic exchange.
package queue

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"hirelens/internal/types"
)

// Job statuses published on the updates exchange
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// AnalysisJob is one message on the jobs queue. Each file is fetched from
// object storage by ObjectKey or decoded from inline base64 Data.
type AnalysisJob struct {
	ID    string    `json:"id"`
	Role  string    `json:"role"`
	Files []JobFile `json:"files"`
}

type JobFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	ObjectKey   string `json:"objectKey,omitempty"`
	Data        string `json:"data,omitempty"`
}

// JobUpdate is published with routing key "job.<id>"
type JobUpdate struct {
	JobID     string             `json:"jobId"`
	Status    string             `json:"status"`
	Message   string             `json:"message"`
	Result    *types.BatchResult `json:"result,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// RoutingKey returns the topic key updates for jobID are published under
func RoutingKey(jobID string) string {
	return "job." + jobID
}

func (j AnalysisJob) validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return fmt.Errorf("job id is required")
	}
	if len(j.Files) == 0 {
		return fmt.Errorf("job %s has no files", j.ID)
	}
	for i, f := range j.Files {
		if f.ObjectKey == "" && f.Data == "" {
			return fmt.Errorf("file %d of job %s has neither objectKey nor data", i, j.ID)
		}
	}
	return nil
}

func (f JobFile) name() string {
	if f.Filename != "" {
		return f.Filename
	}
	if i := strings.LastIndex(f.ObjectKey, "/"); i >= 0 {
		return f.ObjectKey[i+1:]
	}
	return f.ObjectKey
}

func decodeInline(data string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 file data: %w", err)
	}
	return b, nil
}
