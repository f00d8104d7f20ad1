package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// validLLMNames lists the recognised LLM backend names. "openai" uses the
// native client; the rest go through any-llm-go.
var validLLMNames = []string{"openai", "anthropic", "gemini", "ollama"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, fmt.Errorf("server.listen_addr must be set"))
	}
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Providers.Story.Name == "" {
		errs = append(errs, fmt.Errorf("providers.story.name must be set — story generation has no local fallback"))
	}
	for _, p := range []struct {
		section string
		llm     LLMConfig
	}{
		{"providers.story", cfg.Providers.Story},
		{"providers.assess", cfg.Providers.Assess},
	} {
		if p.llm.Name == "" {
			continue
		}
		if !slices.Contains(validLLMNames, p.llm.Name) {
			errs = append(errs, fmt.Errorf("%s.name %q is unknown; valid values: %v", p.section, p.llm.Name, validLLMNames))
		}
		if p.llm.Model == "" {
			errs = append(errs, fmt.Errorf("%s.model must be set", p.section))
		}
	}

	if cfg.Providers.Art.Name != "" {
		if cfg.Providers.Art.Name != "openai" {
			errs = append(errs, fmt.Errorf("providers.art.name %q is unknown; only \"openai\" is supported", cfg.Providers.Art.Name))
		}
		if cfg.Providers.Art.Model == "" {
			errs = append(errs, fmt.Errorf("providers.art.model must be set"))
		}
	}

	if cfg.Storage.PostgresDSN == "" {
		errs = append(errs, fmt.Errorf("storage.postgres_dsn must be set"))
	}

	if t := cfg.Reading.LiveMatchThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("reading.live_match_threshold %v must be within [0, 1]", t))
	}
	if cfg.Reading.RestartBudget < 0 {
		errs = append(errs, fmt.Errorf("reading.restart_budget must not be negative"))
	}
	if cfg.Reading.IllustrationWorkers < 0 {
		errs = append(errs, fmt.Errorf("reading.illustration_workers must not be negative"))
	}

	return errors.Join(errs...)
}
