package datadir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	d := Dir(filepath.Join("base", "data"))
	tests := []struct {
		name string
		got  string
		file string
	}{
		{"users", d.UsersPath(), UsersFile},
		{"todos", d.TodosPath(), TodosFile},
		{"session", d.SessionPath(), SessionFile},
		{"session key", d.SessionKeyPath(), SessionKeyFile},
		{"export", d.ExportPath(), ExportFile},
		{"logs", d.LogsPath(), LogsDir},
	}
	for _, tt := range tests {
		want := filepath.Join("base", "data", tt.file)
		if tt.got != want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, want)
		}
	}

	if got := Dir(".").UsersPath(); got != UsersFile {
		t.Errorf("current dir: got %q, want %q", got, UsersFile)
	}
}

func TestEnsure(t *testing.T) {
	d := Dir(filepath.Join(t.TempDir(), "nested", "data"))
	if err := d.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	info, err := os.Stat(string(d))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("data dir is not a directory")
	}
	if err := d.Ensure(); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}

	if err := Dir("").Ensure(); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
