package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("warn", &buf)
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "k=1") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestDecisionLogger_InfoLevelCreatesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trace")
	dl, err := NewDecisionLogger(dir, "info")
	if err != nil {
		t.Fatal(err)
	}
	if dl != nil {
		t.Fatal("expected nil logger at info level")
	}
	dl.Stage(1, "noop", nil)
	if err := dl.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("info level created the trace directory")
	}
}

func TestDecisionLogger_WritesJSONL(t *testing.T) {
	dir := t.TempDir()
	dl, err := NewDecisionLogger(dir, "debug")
	if err != nil {
		t.Fatal(err)
	}
	dl.WithRun("run-1")
	dl.Stage(3, "participant_buys", map[string]float64{"total_dai": 12.5})
	dl.Stage(3, "proposal_funding", map[string]float64{"trigger": math.Inf(1)})
	if err := dl.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "decisions.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first["run_id"] != "run-1" || first["stage"] != "participant_buys" || first["timestep"] != 3.0 {
		t.Errorf("first entry = %v", first)
	}
	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if _, ok := second["error"]; !ok {
		t.Errorf("unencodable decision should be replaced by an error entry: %v", second)
	}
}

func TestDecisionWriter(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDecisionWriter(&buf)
	dl.Stage(0, "sync", nil)
	if !strings.Contains(buf.String(), `"stage":"sync"`) {
		t.Errorf("output = %q", buf.String())
	}
	if err := dl.Close(); err != nil {
		t.Errorf("Close on writer-backed logger: %v", err)
	}
}
