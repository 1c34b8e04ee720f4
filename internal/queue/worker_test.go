package queue

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"

	"hirelens/internal/errors"
	"hirelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key    string
	update JobUpdate
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, key string, body []byte) error {
	var u JobUpdate
	if err := json.Unmarshal(body, &u); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{key: key, update: u})
	return p.err
}

func (p *fakePublisher) statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.msgs {
		out = append(out, m.update.Status)
	}
	return out
}

type fakeObjects map[string][]byte

func (f fakeObjects) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := f[key]
	if !ok {
		return nil, stderrors.New("object not found")
	}
	return b, nil
}

// echoAnalyzer succeeds for every file except those named "bad"
type echoAnalyzer struct {
	got []types.ResumeFile
}

func (a *echoAnalyzer) AnalyzeMany(_ context.Context, files []types.ResumeFile, role string) []types.BatchEntry {
	a.got = append(a.got, files...)
	entries := make([]types.BatchEntry, len(files))
	for i, f := range files {
		entries[i].Filename = f.Filename
		if f.Filename == "bad" {
			entries[i].Error = &types.FileError{Filename: f.Filename, Message: "unreadable"}
			continue
		}
		entries[i].Analysis = &types.ResumeAnalysis{Filename: f.Filename, TargetRole: role, Summary: string(f.Data)}
	}
	return entries
}

func jobBody(t *testing.T, job AnalysisJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "job.42", RoutingKey("42"))
}

func TestHandle_CompletesInOrder(t *testing.T) {
	pub := &fakePublisher{}
	an := &echoAnalyzer{}
	w := NewWorker(an, fakeObjects{"uploads/b.pdf": []byte("from storage")}, pub, errors.NewDiscardLogger())

	body := jobBody(t, AnalysisJob{
		ID:   "job-1",
		Role: "Backend Engineer",
		Files: []JobFile{
			{Filename: "a.txt", Data: base64.StdEncoding.EncodeToString([]byte("inline"))},
			{ObjectKey: "uploads/missing.pdf"},
			{ObjectKey: "uploads/b.pdf"},
			{Filename: "bad", Data: base64.StdEncoding.EncodeToString([]byte("x"))},
		},
	})
	require.NoError(t, w.Handle(context.Background(), body))

	assert.Equal(t, []string{StatusProcessing, StatusCompleted}, pub.statuses())
	assert.Equal(t, "job.job-1", pub.msgs[1].key)

	result := pub.msgs[1].update.Result
	require.NotNil(t, result)
	require.Len(t, result.Entries, 4)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Failed)

	assert.Equal(t, "inline", result.Entries[0].Analysis.Summary)
	assert.Equal(t, "missing.pdf", result.Entries[1].Filename)
	require.NotNil(t, result.Entries[1].Error)
	assert.Equal(t, "from storage", result.Entries[2].Analysis.Summary)
	assert.Equal(t, "b.pdf", result.Entries[2].Filename)
	assert.False(t, result.Entries[3].Succeeded())

	assert.Len(t, an.got, 3, "files that could not be fetched are not analyzed")
}

func TestHandle_InvalidJobs(t *testing.T) {
	tests := []struct {
		name      string
		body      []byte
		published int
	}{
		{"not json", []byte("{"), 0},
		{"no id", []byte(`{"files":[{"data":"eA=="}]}`), 0},
		{"no files", []byte(`{"id":"j1"}`), 1},
		{"empty file", []byte(`{"id":"j1","files":[{"filename":"a.pdf"}]}`), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			w := NewWorker(&echoAnalyzer{}, nil, pub, errors.NewDiscardLogger())

			assert.Error(t, w.Handle(context.Background(), tt.body))
			assert.Len(t, pub.msgs, tt.published)
			for _, m := range pub.msgs {
				assert.Equal(t, StatusFailed, m.update.Status)
			}
		})
	}
}

func TestHandle_BadBase64AndNoStorage(t *testing.T) {
	pub := &fakePublisher{}
	w := NewWorker(&echoAnalyzer{}, nil, pub, errors.NewDiscardLogger())

	body := jobBody(t, AnalysisJob{ID: "j2", Files: []JobFile{
		{Filename: "a.pdf", Data: "%%%"},
		{ObjectKey: "k.pdf"},
	}})
	require.NoError(t, w.Handle(context.Background(), body))

	result := pub.msgs[len(pub.msgs)-1].update.Result
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Contains(t, result.Entries[0].Error.Message, "base64")
	assert.Contains(t, result.Entries[1].Error.Message, "not configured")
}

func TestHandle_PublishErrorsAreNotFatal(t *testing.T) {
	pub := &fakePublisher{err: stderrors.New("channel closed")}
	w := NewWorker(&echoAnalyzer{}, nil, pub, errors.NewDiscardLogger())

	body := jobBody(t, AnalysisJob{ID: "j3", Files: []JobFile{{Filename: "a.txt", Data: "eA=="}}})
	assert.NoError(t, w.Handle(context.Background(), body))
}
