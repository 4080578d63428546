package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/cache"
	"github.com/matheusmosca/storefront/services/storefront/database"
	"github.com/matheusmosca/storefront/services/storefront/repository"
	"github.com/matheusmosca/storefront/services/storefront/usecases"
)

// promoteAdminCmd concede o papel ADMIN a um usuário já cadastrado
func promoteAdminCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "promote-admin <email>",
		Short: "Concede o papel ADMIN a um usuário",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			pool, err := database.InitPool(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			users := usecases.NewUserAdminUseCase(repository.NewPostgresStore(pool), cache.NopProductCache{}, logger)
			user, err := users.PromoteToAdmin(cmd.Context(), args[0])
			if err != nil {
				logger.Error("❌ [ADMIN] Promotion FAILED", zap.String("email", args[0]), zap.Error(err))
				return err
			}

			cmd.Printf("%s agora é ADMIN\n", user.Email)
			return nil
		},
	}
}
