package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/linkboard/internal/analytics"
)

func decodeComparison(t *testing.T, out string) analytics.Comparison {
	t.Helper()

	var c analytics.Comparison
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("failed to decode comparison: %v", err)
	}
	return c
}

func TestCompareCmd(t *testing.T) {
	t.Parallel()

	t.Run("compares two documents", func(t *testing.T) {
		t.Parallel()

		e := newTestEnv(t)
		prev := writeFile(t, e.dir, "previous.json", previousRun)
		curr := writeFile(t, e.dir, "current.json", currentRun)

		out, _, err := e.run(t, "compare", "--json", prev, curr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c := decodeComparison(t, out)
		if len(c.NewBroken) != 1 || c.NewBroken[0].URL != "https://example.com/e" {
			t.Errorf("expected /e to be new, got %+v", c.NewBroken)
		}
		if len(c.Resolved) != 1 || c.Resolved[0].URL != "https://example.com/b" {
			t.Errorf("expected /b to be resolved, got %+v", c.Resolved)
		}
		if c.UnchangedCount != 3 {
			t.Errorf("expected 3 unchanged, got %d", c.UnchangedCount)
		}
		if c.Previous.ID != 0 {
			t.Errorf("expected no run ID for a document, got %d", c.Previous.ID)
		}
	})

	t.Run("writes the comparison file and the text summary to stdout", func(t *testing.T) {
		t.Parallel()

		e := newTestEnv(t)
		prev := writeFile(t, e.dir, "previous.json", previousRun)
		curr := writeFile(t, e.dir, "current.json", currentRun)
		dest := filepath.Join(e.dir, "comparison.json")

		out, _, err := e.run(t, "compare", "--json", "-o", dest, prev, curr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "RUN COMPARISON") {
			t.Errorf("expected text summary on stdout, got:\n%s", out)
		}

		data, err := os.ReadFile(dest) //nolint:gosec // test path
		if err != nil {
			t.Fatalf("failed to read comparison file: %v", err)
		}
		c := decodeComparison(t, string(data))
		if len(c.NewBroken) != 1 {
			t.Errorf("expected 1 new broken link, got %d", len(c.NewBroken))
		}
	})

	t.Run("compares the latest two recorded runs", func(t *testing.T) {
		t.Parallel()

		e := newTestEnv(t)
		prev := writeFile(t, e.dir, "previous.json", previousRun)
		curr := writeFile(t, e.dir, "current.json", currentRun)
		for _, src := range []string{prev, curr} {
			if _, _, err := e.run(t, "history", "import", src); err != nil {
				t.Fatalf("failed to import %s: %v", src, err)
			}
		}

		out, _, err := e.run(t, "compare")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"RUN COMPARISON", "#1", "#2", "New broken links (1)", "Resolved links (1)", "Unchanged: 3"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("compares the latest run with a run ID", func(t *testing.T) {
		t.Parallel()

		e := newTestEnv(t)
		prev := writeFile(t, e.dir, "previous.json", previousRun)
		curr := writeFile(t, e.dir, "current.json", currentRun)
		for _, src := range []string{prev, curr} {
			if _, _, err := e.run(t, "history", "import", src); err != nil {
				t.Fatalf("failed to import %s: %v", src, err)
			}
		}

		out, _, err := e.run(t, "compare", "--json", "--with-run-id", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c := decodeComparison(t, out)
		if c.Previous.ID != 1 || c.Current.ID != 2 {
			t.Errorf("expected runs 1 and 2, got %d and %d", c.Previous.ID, c.Current.ID)
		}
	})

	t.Run("compares the latest run with a document", func(t *testing.T) {
		t.Parallel()

		e := newTestEnv(t)
		prev := writeFile(t, e.dir, "previous.json", previousRun)
		curr := writeFile(t, e.dir, "current.json", currentRun)
		if _, _, err := e.run(t, "history", "import", prev); err != nil {
			t.Fatalf("failed to import: %v", err)
		}

		out, _, err := e.run(t, "compare", "--markdown", curr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "# Run Comparison") || !strings.Contains(out, "https://example.com/e") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("requires two recorded runs", func(t *testing.T) {
		t.Parallel()

		e := newTestEnv(t)
		prev := writeFile(t, e.dir, "previous.json", previousRun)
		if _, _, err := e.run(t, "history", "import", prev); err != nil {
			t.Fatalf("failed to import: %v", err)
		}

		_, _, err := e.run(t, "compare")
		if err == nil || !strings.Contains(err.Error(), "at least 2 runs") {
			t.Errorf("expected too few runs error, got %v", err)
		}
	})

	t.Run("requires recorded runs", func(t *testing.T) {
		t.Parallel()

		if _, _, err := newTestEnv(t).run(t, "compare"); err == nil {
			t.Error("expected error for empty history")
		}
	})

	t.Run("rejects a run ID with documents", func(t *testing.T) {
		t.Parallel()

		e := newTestEnv(t)
		prev := writeFile(t, e.dir, "previous.json", previousRun)

		if _, _, err := e.run(t, "compare", "--with-run-id", "1", prev); err == nil {
			t.Error("expected error for conflicting arguments")
		}
	})
}
