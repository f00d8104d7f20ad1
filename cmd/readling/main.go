// Command readling is the main entry point for the Readling reading-practice
// server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/readling/readling/internal/app"
	"github.com/readling/readling/internal/config"
	"github.com/readling/readling/internal/observe"
	artopenai "github.com/readling/readling/pkg/provider/art/openai"
	"github.com/readling/readling/pkg/provider/assess/llmassess"
	"github.com/readling/readling/pkg/provider/llm"
	"github.com/readling/readling/pkg/provider/llm/anyllm"
	llmopenai "github.com/readling/readling/pkg/provider/llm/openai"
	"github.com/readling/readling/pkg/provider/story/llmstory"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "readling: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "readling: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("readling starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "readling",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	providers, err := buildProviders(cfg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	application, err := app.New(ctx, cfg, providers)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildProviders instantiates all providers named in cfg and returns them in
// an [app.Providers] struct for the application to consume.
func buildProviders(cfg *config.Config) (*app.Providers, error) {
	ps := &app.Providers{}

	storyLLM, err := buildLLM(cfg.Providers.Story)
	if err != nil {
		return nil, fmt.Errorf("create story provider %q: %w", cfg.Providers.Story.Name, err)
	}
	ps.Story = llmstory.New(storyLLM)
	slog.Info("provider created", "kind", "story", "name", cfg.Providers.Story.Name, "model", cfg.Providers.Story.Model)

	if name := cfg.Providers.Assess.Name; name != "" {
		assessLLM, err := buildLLM(cfg.Providers.Assess)
		if err != nil {
			return nil, fmt.Errorf("create assess provider %q: %w", name, err)
		}
		ps.Assess = llmassess.New(assessLLM)
		slog.Info("provider created", "kind", "assess", "name", name, "model", cfg.Providers.Assess.Model)
	}

	switch name := cfg.Providers.Art.Name; name {
	case "":
		slog.Info("illustration disabled — books will be created without images")
	case "openai":
		p, err := artopenai.New(cfg.Providers.Art.APIKey, cfg.Providers.Art.Model)
		if err != nil {
			return nil, fmt.Errorf("create art provider %q: %w", name, err)
		}
		ps.Art = p
		slog.Info("provider created", "kind", "art", "name", name, "model", cfg.Providers.Art.Model)
	default:
		return nil, fmt.Errorf("unknown art provider %q", name)
	}

	return ps, nil
}

// buildLLM creates the chat backend named by entry. "openai" uses the native
// client; everything else goes through any-llm-go.
func buildLLM(entry config.LLMConfig) (llm.Provider, error) {
	if entry.Name == "" {
		return nil, errors.New("provider name is required")
	}

	if entry.Name == "openai" {
		var opts []llmopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, llmopenai.WithBaseURL(entry.BaseURL))
		}
		return llmopenai.New(entry.APIKey, entry.Model, opts...)
	}

	var opts []anyllmlib.Option
	if entry.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
	}
	if entry.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
	}
	return anyllm.New(entry.Name, entry.Model, opts...)
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
