package config_test

import (
	"strings"
	"testing"

	"github.com/readling/readling/internal/config"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: info
providers:
  story:
    name: openai
    model: gpt-4o-mini
    api_key: sk-test
  assess:
    name: anthropic
    model: claude-3-5-haiku-latest
  art:
    name: openai
    model: dall-e-3
    api_key: sk-test
storage:
  postgres_dsn: postgres://readling@localhost/readling
reading:
  live_match_threshold: 0.7
  restart_budget: 3
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":8080")
	}
	if cfg.Providers.Story.Model != "gpt-4o-mini" {
		t.Errorf("Story.Model = %q, want %q", cfg.Providers.Story.Model, "gpt-4o-mini")
	}
	if cfg.Providers.Assess.Name != "anthropic" {
		t.Errorf("Assess.Name = %q, want %q", cfg.Providers.Assess.Name, "anthropic")
	}
	if cfg.Reading.LiveMatchThreshold != 0.7 {
		t.Errorf("LiveMatchThreshold = %v, want 0.7", cfg.Reading.LiveMatchThreshold)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("bogus_key: true\n"))
	if err == nil {
		t.Fatal("LoadFromReader accepted unknown top-level key")
	}
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantSub string
	}{
		{
			name:    "missing listen addr",
			mutate:  func(c *config.Config) { c.Server.ListenAddr = "" },
			wantSub: "listen_addr",
		},
		{
			name:    "bad log level",
			mutate:  func(c *config.Config) { c.Server.LogLevel = "loud" },
			wantSub: "log_level",
		},
		{
			name:    "missing story provider",
			mutate:  func(c *config.Config) { c.Providers.Story.Name = "" },
			wantSub: "providers.story.name",
		},
		{
			name:    "unknown llm name",
			mutate:  func(c *config.Config) { c.Providers.Assess.Name = "skynet" },
			wantSub: "providers.assess.name",
		},
		{
			name:    "story model missing",
			mutate:  func(c *config.Config) { c.Providers.Story.Model = "" },
			wantSub: "providers.story.model",
		},
		{
			name:    "missing dsn",
			mutate:  func(c *config.Config) { c.Storage.PostgresDSN = "" },
			wantSub: "postgres_dsn",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *config.Config) { c.Reading.LiveMatchThreshold = 1.5 },
			wantSub: "live_match_threshold",
		},
		{
			name:    "negative restart budget",
			mutate:  func(c *config.Config) { c.Reading.RestartBudget = -1 },
			wantSub: "restart_budget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
			if err != nil {
				t.Fatalf("baseline config invalid: %v", err)
			}
			tt.mutate(cfg)

			err = config.Validate(cfg)
			if err == nil {
				t.Fatal("Validate accepted invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestValidate_AssessOptional(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("baseline config invalid: %v", err)
	}

	// No assess backend: assessment falls back to the local scorer.
	cfg.Providers.Assess = config.LLMConfig{}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("Validate rejected config without assess provider: %v", err)
	}
}
