package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/glovera/consult/internal/archive"
	"github.com/glovera/consult/internal/catalog"
	"github.com/glovera/consult/internal/config"
	"github.com/glovera/consult/internal/janitor"
	"github.com/glovera/consult/internal/server"
	"github.com/glovera/consult/internal/speech"
	"github.com/glovera/consult/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the conversation HTTP server",
		Long: `Starts the HTTP API, the catalog seed watcher (for the
in-memory catalog) and the idle-session janitor, and runs until
interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	logger := telemetry.NewRedactedLogger(os.Stderr, parseLogLevel(cfg.LogLevel),
		cfg.APIKey, os.Getenv("OPENAI_API_KEY"), os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("GROQ_API_KEY"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := []server.ServerOption{
		server.WithLogger(logger),
	}
	if cfg.APIKey != "" {
		opts = append(opts, server.WithAPIKey(cfg.APIKey))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		opts = append(opts, server.WithSynthesizer(speech.NewOpenAISynthesizer(key, speech.WithVoice(cfg.TTSVoice))))
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		opts = append(opts, server.WithTranscriber(speech.NewGroqTranscriber(key)))
	}

	srv := server.NewServer(st.client, st.registry, st.translator, st.lookup, st.sessions, st.chatModel, opts...)

	var archiver archive.Archiver = archive.Noop{}
	if cfg.ArchiveBucket != "" {
		archiver, err = archive.NewS3Archiver(ctx, cfg.ArchiveBucket, cfg.ArchivePrefix)
		if err != nil {
			return fmt.Errorf("init archiver: %w", err)
		}
	}

	jan := janitor.New(st.sessions, archiver, cfg.SessionIdleTimeout, logger)
	if err := jan.Start(cfg.JanitorSchedule); err != nil {
		return fmt.Errorf("start janitor: %w", err)
	}
	defer jan.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := srv.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if st.memCatalog != nil && cfg.CatalogWatch {
		g.Go(func() error {
			err := catalog.Watch(ctx, st.memCatalog, cfg.CatalogSeed, logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
