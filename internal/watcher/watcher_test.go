package watcher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hirelens/internal/agents"
	"hirelens/internal/config"
	"hirelens/internal/errors"
	"hirelens/internal/types"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, file types.ResumeFile, role string, _ agents.Observer) (*types.ResumeAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, file.Filename)
	return &types.ResumeAnalysis{
		Filename:      file.Filename,
		CandidateName: "Jane Doe",
		TargetRole:    role,
		MatchScore:    81,
	}, nil
}

func (f *fakeAnalyzer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestWatcher(t *testing.T, format string) (*InboxWatcher, *fakeAnalyzer, config.WatchConfig) {
	t.Helper()
	root := t.TempDir()
	cfg := config.WatchConfig{
		InboxDir:  filepath.Join(root, "inbox"),
		OutputDir: filepath.Join(root, "reports"),
		Role:      "Backend Engineer",
		Format:    format,
		Debounce:  20 * time.Millisecond,
	}
	require.NoError(t, os.MkdirAll(cfg.InboxDir, 0750))
	fa := &fakeAnalyzer{}
	return New(cfg, fa, 0, errors.NewDiscardLogger()), fa, cfg
}

func TestProcessFile(t *testing.T) {
	w, fa, cfg := newTestWatcher(t, "")
	path := filepath.Join(cfg.InboxDir, "jane_doe.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe"), 0600))

	report, err := w.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "jane_doe.json"), report)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var got types.ResumeAnalysis
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Backend Engineer", got.TargetRole)
	assert.Equal(t, 81, got.MatchScore)

	// unchanged file is not analyzed twice
	report, err = w.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, report)
	assert.Equal(t, 1, fa.count())

	// a removed file is ignored
	report, err = w.ProcessFile(context.Background(), filepath.Join(cfg.InboxDir, "gone.pdf"))
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestShouldProcessEvent(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/in/jane.pdf", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/in/jane.docx", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/in/jane.pdf", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/in/.jane.pdf.swp", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/in/photo.png", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldProcessEvent(tt.event), tt.event.String())
	}
}

func TestRunAnalyzesExistingAndNewFiles(t *testing.T) {
	w, fa, cfg := newTestWatcher(t, "markdown")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InboxDir, "existing.txt"), []byte("old"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	existing := filepath.Join(cfg.OutputDir, "existing.md")
	require.Eventually(t, func() bool {
		_, err := os.Stat(existing)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.InboxDir, "new.txt"), []byte("new"), 0600))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, "new.md"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}

	assert.Equal(t, 2, fa.count())
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Jane Doe")
}
