package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/glovera/consult/internal/catalog"
	"github.com/glovera/consult/internal/config"
	"github.com/glovera/consult/internal/llm"
	"github.com/glovera/consult/internal/session"
	"github.com/glovera/consult/internal/tools"
	"github.com/glovera/consult/internal/translator"
)

// stack holds the wired collaborators shared by the serve and chat
// commands.
type stack struct {
	client     llm.Client
	chatModel  string
	registry   *tools.Registry
	translator *translator.Translator
	lookup     *catalog.Lookup
	sessions   session.Store

	// memCatalog is non-nil when the catalog is file-backed, so the
	// caller can attach the seed watcher.
	memCatalog *catalog.MemoryStore
	db         *sql.DB
}

func buildStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stack, error) {
	client, chatModel := llm.NewClientForModel(cfg.ChatModel)
	trClient, trModel := llm.NewClientForModel(cfg.TranslatorModel)

	st := &stack{
		client:     client,
		chatModel:  chatModel,
		registry:   tools.NewRegistry(),
		translator: translator.New(trClient, trModel),
	}

	var db *sql.DB
	if cfg.CatalogStore == "postgres" || cfg.SessionStore == "postgres" {
		var err error
		db, err = session.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		st.db = db
	}

	switch cfg.CatalogStore {
	case "postgres":
		store := catalog.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("catalog schema: %w", err)
		}
		st.lookup = catalog.NewLookup(store, cfg.ResultLimit)
	default:
		store, err := catalog.NewMemoryStoreFromFile(cfg.CatalogSeed)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load catalog seed: %w", err)
			}
			logger.Warn("catalog seed file missing, starting with an empty catalog", "path", cfg.CatalogSeed)
			store = catalog.NewMemoryStore()
		}
		st.memCatalog = store
		st.lookup = catalog.NewLookup(store, cfg.ResultLimit)
		logger.Info("catalog loaded", "path", cfg.CatalogSeed, "programs", store.Len())
	}

	switch cfg.SessionStore {
	case "postgres":
		store := session.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("session schema: %w", err)
		}
		st.sessions = store
	default:
		st.sessions = session.NewMemoryStore()
	}

	return st, nil
}

func (st *stack) Close() {
	if st.db != nil {
		_ = st.db.Close()
	}
}
