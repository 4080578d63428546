package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/database"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o schema do banco de dados",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := database.OpenSQL(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db, logger); err != nil {
				logger.Error("❌ [MIGRATE] FAILED", zap.Error(err))
				return err
			}
			return nil
		},
	}
}
