package main

import (
	"strings"
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "linkboard" {
			t.Errorf("expected use 'linkboard', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{name: "verbose", shorthand: "v", defValue: "false"},
			{name: "config", shorthand: "c", defValue: ""},
			{name: "json-logs", shorthand: "", defValue: "false"},
		}
		for _, tt := range tests {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q for %s, got %q", tt.shorthand, tt.name, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q for %s, got %q", tt.defValue, tt.name, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		want := []string{"serve", "links", "export", "report", "history", "compare", "init", "version"}
		for _, name := range want {
			found := false
			for _, sub := range cmd.Commands() {
				if sub.Name() == name {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}

func TestRootCmdMissingConfig(t *testing.T) {
	t.Parallel()

	e := testEnv{dir: t.TempDir(), config: "/nonexistent/linkboard.yaml"}
	_, _, err := e.run(t, "links", "results.json")
	if err == nil {
		t.Fatal("expected error for missing configuration file")
	}
	if !strings.Contains(err.Error(), "configuration file not found") {
		t.Errorf("expected configuration file error, got %v", err)
	}
}
