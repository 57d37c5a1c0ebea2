// Package logging provides the operational logger and the per-stage
// decision trace written while a simulation runs.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog.Level.
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled text logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// DecisionLogger appends one JSON object per stage decision to
// dir/decisions.jsonl. A nil DecisionLogger is valid and drops everything.
type DecisionLogger struct {
	mu    sync.Mutex
	w     io.Writer
	close func() error
	runID string
}

// NewDecisionLogger opens dir/decisions.jsonl for append. Below debug level
// it returns nil and creates nothing.
func NewDecisionLogger(dir, level string) (*DecisionLogger, error) {
	if ParseLevel(level) > slog.LevelDebug {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create decision log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "decisions.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open decision log: %w", err)
	}
	return &DecisionLogger{w: f, close: f.Close}, nil
}

// NewDecisionWriter traces to w, which the caller owns.
func NewDecisionWriter(w io.Writer) *DecisionLogger {
	return &DecisionLogger{w: w}
}

// WithRun tags subsequent entries with runID.
func (dl *DecisionLogger) WithRun(runID string) {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	dl.runID = runID
	dl.mu.Unlock()
}

// Stage records the decision a stage took at a timestep.
func (dl *DecisionLogger) Stage(timestep int, stage string, decision any) {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()

	entry := struct {
		RunID    string `json:"run_id,omitempty"`
		Timestep int    `json:"timestep"`
		Stage    string `json:"stage"`
		Decision any    `json:"decision,omitempty"`
	}{dl.runID, timestep, stage, decision}

	data, err := json.Marshal(entry)
	if err != nil {
		// Decisions may hold +Inf triggers, which JSON cannot carry.
		data, _ = json.Marshal(map[string]any{
			"run_id": dl.runID, "timestep": timestep, "stage": stage, "error": err.Error(),
		})
	}
	data = append(data, '\n')
	_, _ = dl.w.Write(data)
}

// Close closes the file opened by NewDecisionLogger.
func (dl *DecisionLogger) Close() error {
	if dl == nil || dl.close == nil {
		return nil
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	err := dl.close()
	dl.close = nil
	return err
}
