package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glovera/consult/internal/catalog"
	"github.com/glovera/consult/internal/config"
	"github.com/glovera/consult/internal/session"
)

func newSeedCmd() *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the program catalog seed file into PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if seedFile == "" {
				seedFile = cfg.CatalogSeed
			}

			docs, err := catalog.LoadSeedFile(seedFile)
			if err != nil {
				return err
			}

			db, err := session.OpenPostgres(cfg.PostgresDSN)
			if err != nil {
				return fmt.Errorf("open postgres: %w", err)
			}
			defer db.Close()

			store := catalog.NewPostgresStore(db)
			ctx := cmd.Context()
			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("catalog schema: %w", err)
			}
			if err := store.Insert(ctx, docs); err != nil {
				return fmt.Errorf("insert programs: %w", err)
			}

			fmt.Printf("Seeded %d programs from %s\n", len(docs), seedFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&seedFile, "file", "", "Seed file path (defaults to CONSULT_CATALOG_SEED)")
	return cmd
}
