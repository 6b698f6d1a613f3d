package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/artem13815/taskboard/pkg/config"
	"github.com/artem13815/taskboard/pkg/storage/postgres"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres backend",
		Long: `Apply the embedded schema migrations to DATABASE_URL and exit.

serve runs the same migrations on start-up, so this is only needed when
the schema has to exist before the first server starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.StoreBackend != config.BackendPostgres {
				return errors.New("migrate requires STORE_BACKEND=postgres")
			}
			pool, err := postgres.Connect(cmd.Context(), cfg.DatabaseURL, int32(cfg.DBMaxConns))
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := postgres.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "count", n)
			return nil
		},
	}
}
