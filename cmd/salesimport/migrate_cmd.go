package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yaro-bit/SimpleSalesman/internal/db"
	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|status]",
		Short:     "Apply or inspect the database schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			conn, err := db.NewConnection(cfg)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer conn.Close()

			ctx := cmd.Context()
			switch action {
			case "status":
				return db.MigrationStatus(ctx, conn.DB)
			default:
				if err := db.Migrate(ctx, conn.DB); err != nil {
					return err
				}
				version, err := db.MigrationVersion(ctx, conn.DB)
				if err != nil {
					return err
				}
				log := logger.Get()
				log.Info().Int64("version", version).Msg("Schema is up to date")
				return nil
			}
		},
	}
}
