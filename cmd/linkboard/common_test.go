package main

import (
	"strings"
	"testing"

	"github.com/nao1215/linkboard/internal/config"
)

func TestUserAgent(t *testing.T) {
	t.Parallel()

	t.Run("default user agent carries the version", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		got := userAgent(cfg)
		if !strings.HasPrefix(got, "linkboard/"+getVersion()+" ") {
			t.Errorf("expected versioned user agent, got %q", got)
		}
	})

	t.Run("configured user agent is kept", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.UserAgent = "ci-bot/1.0"
		if got := userAgent(cfg); got != "ci-bot/1.0" {
			t.Errorf("expected %q, got %q", "ci-bot/1.0", got)
		}
	})
}
