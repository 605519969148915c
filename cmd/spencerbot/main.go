// Command spencerbot is the main entry point for the SpencerBot Korean
// learning Discord bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/spencerchil/spencerbot/internal/anki"
	"github.com/spencerchil/spencerbot/internal/config"
	discordbot "github.com/spencerchil/spencerbot/internal/discord"
	"github.com/spencerchil/spencerbot/internal/drill"
	"github.com/spencerchil/spencerbot/internal/gpt"
	"github.com/spencerchil/spencerbot/internal/health"
	"github.com/spencerchil/spencerbot/internal/observe"
	"github.com/spencerchil/spencerbot/internal/tts"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "spencerbot: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "spencerbot: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("spencerbot starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	telemetry, err := observe.Setup(observe.Config{ServiceName: "spencerbot"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	metrics := observe.DefaultMetrics()

	// ── Flashcard collection ──────────────────────────────────────────────────
	store, err := anki.OpenCollection(cfg.Anki.CollectionPath, cfg.Anki.Profile)
	if err != nil {
		slog.Error("failed to open Anki collection", "err", err)
		return 1
	}
	slog.Info("anki collection opened", "path", store.Path())

	// ── OpenAI clients ────────────────────────────────────────────────────────
	var gptOpts []gpt.Option
	if cfg.OpenAI.Model != "" {
		gptOpts = append(gptOpts, gpt.WithModel(cfg.OpenAI.Model))
	}
	if cfg.OpenAI.BaseURL != "" {
		gptOpts = append(gptOpts, gpt.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	if cfg.OpenAI.Timeout > 0 {
		gptOpts = append(gptOpts, gpt.WithTimeout(cfg.OpenAI.Timeout))
	}
	gptClient, err := gpt.New(cfg.OpenAI.APIKey, gptOpts...)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		return 1
	}

	var ttsOpts []tts.Option
	if cfg.OpenAI.Voice != "" {
		ttsOpts = append(ttsOpts, tts.WithVoice(cfg.OpenAI.Voice))
	}
	if cfg.OpenAI.BaseURL != "" {
		ttsOpts = append(ttsOpts, tts.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	speech, err := tts.New(cfg.OpenAI.APIKey, ttsOpts...)
	if err != nil {
		slog.Error("failed to create TTS client", "err", err)
		return 1
	}

	// ── Exercise engine ───────────────────────────────────────────────────────
	var sessionOpts []drill.MemStoreOption
	if cfg.Session.MaxIdle > 0 {
		sessionOpts = append(sessionOpts,
			drill.WithMaxIdle(cfg.Session.MaxIdle),
			// Idle eviction bypasses the engine's "stop" path, so the
			// active-session gauge must be told about it here.
			drill.WithEvictHook(func(evicted int) {
				metrics.ActiveSessions.Add(context.Background(), int64(-evicted))
			}),
		)
	}
	sessions := drill.NewMemStore(sessionOpts...)

	engine := drill.NewEngine(sessions, store, gptClient, gptClient,
		drill.WithSpeech(speech),
		drill.WithLogger(logger),
	)

	// ── Discord bot ───────────────────────────────────────────────────────────
	botOpts := []discordbot.Option{discordbot.WithLogger(logger)}
	if cfg.Anki.Sync.Username != "" {
		botOpts = append(botOpts, discordbot.WithSyncer(&anki.Syncer{
			Bin:      cfg.Anki.Binary,
			Profile:  cfg.Anki.Profile,
			Username: cfg.Anki.Sync.Username,
			Password: cfg.Anki.Sync.Password,
		}))
	}
	bot, err := discordbot.New(cfg.Discord, engine, botOpts...)
	if err != nil {
		slog.Error("failed to create Discord bot", "err", err)
		return 1
	}

	// ── HTTP server: health probes + Prometheus metrics ───────────────────────
	mux := http.NewServeMux()
	health.New(health.StoreChecker(store)).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: observe.Middleware(metrics)(mux),
	}

	// ── Run ───────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := bot.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("discord bot: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("http server listening", "addr", cfg.Server.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		slog.Info("shutdown signal received, stopping…")
		if err := bot.Close(); err != nil {
			slog.Warn("discord bot close error", "err", err)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http server shutdown error", "err", err)
		}
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Logger ─────────────────────────────────────────────────────────────────────

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
