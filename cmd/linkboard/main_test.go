package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// previousRun is a results document with four broken links.
const previousRun = `{
  "lastUpdated": "2025-01-14T10:30:00Z",
  "totalRuns": 2,
  "totalUrls": 100,
  "brokenLinks": 4,
  "successRate": 96,
  "brokenLinksList": [
    {"url": "https://example.com/a", "locale": "en", "statusCode": 404, "errorType": "Not Found", "source": "https://example.com/homepage", "lastChecked": "2025-01-14T10:30:00Z", "latency": 120},
    {"url": "https://example.com/b", "locale": "ja", "statusCode": 500, "errorType": "Server Error", "source": "https://example.com/docs", "lastChecked": "2025-01-14T10:30:00Z", "latency": 900},
    {"url": "https://example.com/c", "locale": "en", "statusCode": "Timeout", "errorType": "Network Error", "source": "https://example.com/blog", "latency": 5000},
    {"url": "https://example.com/d", "locale": "ja", "statusCode": 404, "errorType": "Not Found", "source": "https://example.com/docs"}
  ],
  "trends": [
    {"date": "2025-01-13", "brokenLinks": 6},
    {"date": "2025-01-14", "brokenLinks": 4}
  ]
}`

// currentRun resolves /b and breaks /e compared with previousRun.
const currentRun = `{
  "lastUpdated": "2025-01-15T10:30:00Z",
  "totalRuns": 3,
  "totalUrls": 100,
  "brokenLinks": 4,
  "successRate": 96,
  "brokenLinksList": [
    {"url": "https://example.com/a", "locale": "en", "statusCode": 404, "errorType": "Not Found", "source": "https://example.com/homepage"},
    {"url": "https://example.com/c", "locale": "en", "statusCode": "Timeout", "errorType": "Network Error", "source": "https://example.com/blog"},
    {"url": "https://example.com/d", "locale": "ja", "statusCode": 404, "errorType": "Not Found", "source": "https://example.com/docs"},
    {"url": "https://example.com/e", "locale": "en", "statusCode": 410, "errorType": "Gone", "source": "https://example.com/pricing"}
  ]
}`

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// testEnv is a temporary directory with a configuration file that keeps
// the run history inside the directory.
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	dir := t.TempDir()
	config := writeFile(t, dir, "linkboard.yaml", "history:\n  dbDir: "+filepath.Join(dir, "db")+"\n")
	return testEnv{dir: dir, config: config}
}

// run executes linkboard with args and returns stdout and stderr.
func (e testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
