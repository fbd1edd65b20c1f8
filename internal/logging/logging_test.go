// Package logging provides tests for logger construction and run logs.
package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.WarnLevel},
		{"verbose", log.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
	}
	for _, tt := range tests {
		if got := ParseFormatter(tt.in); got != tt.want {
			t.Errorf("ParseFormatter(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Format: "text", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", Format: "json", Output: &buf})
	logger.Debug("todo added", "id", "abc")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("record is not JSON: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "todo added" || rec["id"] != "abc" {
		t.Errorf("record: got %v", rec)
	}
}

func TestRunLogMirrorsRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	runLog, err := NewRunLogger(dir)
	if err != nil {
		t.Fatalf("NewRunLogger() error = %v", err)
	}

	var console bytes.Buffer
	logger := New(Options{Level: "info", Format: "json", Output: &console, RunLog: runLog})
	logger.Info("session started", "username", "alice")
	if err := runLog.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(runLog.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"username":"alice"`) {
		t.Errorf("run log content: %q", data)
	}
	if console.String() != string(data) {
		t.Errorf("console and run log differ:\n%q\n%q", console.String(), data)
	}
}

func TestNewRunLogger(t *testing.T) {
	t.Run("creates nested dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		r, err := NewRunLogger(dir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer r.Close()
		if r.RunID == "" || !strings.HasSuffix(r.LogPath, r.RunID+RunLogExt) {
			t.Errorf("RunID %q / LogPath %q", r.RunID, r.LogPath)
		}
		if _, err := os.Stat(r.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty dir returns error", func(t *testing.T) {
		if _, err := NewRunLogger(""); err == nil {
			t.Fatal("expected error for empty dir, got nil")
		}
	})

	t.Run("close nil is safe", func(t *testing.T) {
		var r *RunLogger
		if err := r.Close(); err != nil {
			t.Errorf("Close on nil: %v", err)
		}
	})
}

func writeRun(t *testing.T, dir, id string, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, id+RunLogExt)
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	mt := time.Now().Add(-age)
	if err := os.Chtimes(path, mt, mt); err != nil {
		t.Fatal(err)
	}
}

func TestFindLogRuns(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir, "20240101-000000-1", 3*time.Hour)
	writeRun(t, dir, "20240101-010000-2", time.Hour)
	writeRun(t, dir, "20240101-020000-3", 2*time.Hour)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	runs, err := FindLogRuns(dir)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.RunID)
	}
	want := "20240101-010000-2,20240101-020000-3,20240101-000000-1"
	if got := strings.Join(ids, ","); got != want {
		t.Errorf("FindLogRuns order: got %s, want %s", got, want)
	}

	missing, err := FindLogRuns(filepath.Join(dir, "nope"))
	if err != nil || len(missing) != 0 {
		t.Errorf("missing dir: got %v, %v", missing, err)
	}
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeRun(t, dir, fmt.Sprintf("run-%d", i), time.Duration(i)*time.Hour)
	}

	removed, err := Prune(dir, 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("removed: got %d, want 3", removed)
	}
	runs, _ := FindLogRuns(dir)
	if len(runs) != 2 || runs[0].RunID != "run-0" || runs[1].RunID != "run-1" {
		t.Errorf("kept runs: %+v", runs)
	}

	if removed, err := Prune(dir, 10); err != nil || removed != 0 {
		t.Errorf("Prune with room to spare: removed %d, err %v", removed, err)
	}
}

func TestDefaultOptions(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Output = &buf
	logger := New(opts)

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info record should be dropped by default: %q", out)
	}
	if !strings.Contains(out, "loud") || !strings.Contains(out, "todo") {
		t.Errorf("warn record missing or unprefixed: %q", out)
	}
}
