// Package watcher analyzes resumes dropped into an inbox directory and
// writes a report for each one to an output directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"hirelens/internal/agents"
	"hirelens/internal/common"
	"hirelens/internal/config"
	"hirelens/internal/errors"
	"hirelens/internal/types"
	"hirelens/internal/utils"

	"github.com/fsnotify/fsnotify"
)

// Analyzer runs the analysis pipeline for one file
type Analyzer interface {
	Analyze(ctx context.Context, file types.ResumeFile, role string, observer agents.Observer) (*types.ResumeAnalysis, error)
}

// InboxWatcher watches one directory. Files are analyzed one at a time in
// the order their writes settle.
type InboxWatcher struct {
	mu sync.Mutex

	inboxDir  string
	outputDir string
	role      string
	format    string

	analyzer Analyzer
	files    *common.FileProcessor
	output   *common.OutputHandler
	logger   *errors.Logger

	// Debounce state, keyed by path
	debounceDelay time.Duration
	timers        map[string]*time.Timer
	ready         chan string

	// Modification time of the last analyzed version of each file
	processed map[string]time.Time
}

// New creates a watcher for cfg. An empty format writes JSON reports.
func New(cfg config.WatchConfig, analyzer Analyzer, maxFileSize int64, logger *errors.Logger) *InboxWatcher {
	format := cfg.Format
	if format == "" {
		format = "json"
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &InboxWatcher{
		inboxDir:      cfg.InboxDir,
		outputDir:     cfg.OutputDir,
		role:          cfg.Role,
		format:        format,
		analyzer:      analyzer,
		files:         common.NewFileProcessor(logger, maxFileSize),
		output:        common.NewOutputHandler(logger),
		logger:        logger,
		debounceDelay: debounce,
		timers:        make(map[string]*time.Timer),
		ready:         make(chan string, 64),
		processed:     make(map[string]time.Time),
	}
}

// Run analyzes the files already in the inbox, then every new or
// rewritten file until ctx is cancelled.
func (w *InboxWatcher) Run(ctx context.Context) error {
	for _, dir := range []string{w.inboxDir, w.outputDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fsWatcher.Close(); closeErr != nil {
			w.logger.LogError(closeErr, "Failed to close file watcher")
		}
	}()

	if err := fsWatcher.Add(w.inboxDir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", w.inboxDir, err)
	}

	w.logger.Info("Inbox watcher started",
		"inbox", w.inboxDir,
		"output", w.outputDir,
		"format", w.format,
		"debounce_delay", w.debounceDelay)

	w.scanExisting()

	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if shouldProcessEvent(event) {
				w.schedule(event.Name)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.LogError(err, "File watcher error")

		case path := <-w.ready:
			if _, err := w.ProcessFile(ctx, path); err != nil {
				w.logger.LogError(err, "Failed to analyze inbox file", "file", path)
			}

		case <-ctx.Done():
			w.stopTimers()
			w.logger.Info("Inbox watcher stopped")
			return nil
		}
	}
}

// ProcessFile analyzes path and writes its report, returning the report
// path. A file whose modification time has not changed since its last
// analysis is skipped and reported with an empty path.
func (w *InboxWatcher) ProcessFile(ctx context.Context, path string) (string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // removed before it settled
		}
		return "", fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if !w.hasFileChanged(path, stat.ModTime()) {
		return "", nil
	}

	file, err := w.files.ReadResume(path)
	if err != nil {
		return "", err
	}

	analysis, err := w.analyzer.Analyze(ctx, file, w.role, nil)
	if err != nil {
		return "", err
	}

	report := filepath.Join(w.outputDir, utils.ReportName(file.Filename, w.format))
	if err := w.output.HandleOutput(analysis, common.CommandConfig{OutputFile: report, OutputFormat: w.format}); err != nil {
		return "", err
	}

	w.logger.Info("Inbox resume analyzed",
		"file", file.Filename,
		"report", report,
		"match_score", analysis.MatchScore)
	return report, nil
}

func (w *InboxWatcher) scanExisting() {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		w.logger.LogError(err, "Failed to list inbox", "inbox", w.inboxDir)
		return
	}
	for _, e := range entries {
		if !e.IsDir() && utils.IsResumeFile(e.Name()) {
			w.schedule(filepath.Join(w.inboxDir, e.Name()))
		}
	}
}

// shouldProcessEvent keeps writes and creations of resume files
func shouldProcessEvent(event fsnotify.Event) bool {
	if !utils.IsResumeFile(event.Name) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// schedule (re)starts the debounce timer for path. Editors and copies
// write in several chunks; only the last write triggers an analysis.
func (w *InboxWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounceDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.ready <- path
	})
}

func (w *InboxWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *InboxWatcher) hasFileChanged(path string, modTime time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	last, exists := w.processed[path]
	if exists && !modTime.After(last) {
		return false
	}
	w.processed[path] = modTime
	return true
}
