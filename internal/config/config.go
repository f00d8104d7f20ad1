// Package config provides the configuration schema and loader for the
// Readling server.
package config

// LogLevel controls log verbosity for the Readling server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Readling.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Storage   StorageConfig   `yaml:"storage"`
	Reading   ReadingConfig   `yaml:"reading"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// LLMConfig selects and configures a Large Language Model backend.
type LLMConfig struct {
	// Name selects the backend: "openai" for the native OpenAI client, or an
	// any-llm-go provider name ("anthropic", "gemini", "ollama").
	Name string `yaml:"name"`

	// Model is the model identifier (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// APIKey authenticates against the backend. When empty, the backend's
	// conventional environment variable is used.
	APIKey string `yaml:"api_key"`

	// BaseURL optionally overrides the backend endpoint.
	BaseURL string `yaml:"base_url"`
}

// ArtConfig configures the illustration backend.
type ArtConfig struct {
	// Name selects the backend. "openai" is the only built-in; empty
	// disables illustration.
	Name string `yaml:"name"`

	// Model is the image model identifier (e.g., "dall-e-3").
	Model string `yaml:"model"`

	// APIKey authenticates against the backend.
	APIKey string `yaml:"api_key"`
}

// ProvidersConfig holds one section per provider slot.
type ProvidersConfig struct {
	// Story is the LLM used for storybook generation. Required.
	Story LLMConfig `yaml:"story"`

	// Assess is the LLM used for pronunciation assessment. When the name is
	// empty, assessment runs purely on the local scorer.
	Assess LLMConfig `yaml:"assess"`

	// Art is the illustration backend. Optional.
	Art ArtConfig `yaml:"art"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// PostgresDSN is the PostgreSQL connection string. Required.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// ReadingConfig tunes the reading-session aligner.
type ReadingConfig struct {
	// LiveMatchThreshold overrides the fuzzy-match threshold for live
	// highlighting. Zero means the built-in default (0.7).
	LiveMatchThreshold float64 `yaml:"live_match_threshold"`

	// RestartBudget overrides how many consecutive unexpected speech-engine
	// terminations are tolerated before a session gives up. Zero means the
	// built-in default (3).
	RestartBudget int `yaml:"restart_budget"`

	// IllustrationWorkers bounds how many page illustrations are generated
	// concurrently per book. Zero means the built-in default (4).
	IllustrationWorkers int `yaml:"illustration_workers"`
}
