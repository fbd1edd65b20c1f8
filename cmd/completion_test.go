package cmd

import (
	"strings"
	"testing"
)

func TestCompletionCommandOutputsScripts(t *testing.T) {
	tests := []struct {
		name   string
		shell  string
		needle string
	}{
		{
			name:   "bash",
			shell:  "bash",
			needle: "# bash completion V2 for todo",
		},
		{
			name:   "zsh",
			shell:  "zsh",
			needle: "#compdef todo",
		},
		{
			name:   "fish",
			shell:  "fish",
			needle: "# fish completion for todo",
		},
		{
			name:   "powershell",
			shell:  "powershell",
			needle: "# powershell completion for todo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			output, err := h.run("completion", tt.shell)
			if err != nil {
				t.Fatalf("completion %s: error = %v", tt.shell, err)
			}
			if !strings.Contains(output, tt.needle) {
				t.Fatalf("completion output missing %q for shell %q", tt.needle, tt.shell)
			}
		})
	}
}

func TestCompletionCommandListsShells(t *testing.T) {
	h := newHarness(t)

	output, err := h.run("completion")
	if err != nil {
		t.Fatalf("completion: error = %v", err)
	}
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		if !strings.Contains(output, shell) {
			t.Errorf("completion help missing %q:\n%s", shell, output)
		}
	}
}
