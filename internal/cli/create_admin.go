package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/services"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator or promote an existing account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmail == "" || adminPassword == "" {
			return errors.New("--email and --password are required")
		}

		cfg, log, db, err := bootstrap()
		defer log.Sync()
		if err != nil {
			log.Error("failed to connect to database", zap.Error(err))
			return err
		}

		auth := services.NewAuthService(repository.NewUserRepository(db), nil, nil, cfg.JWTSecret, cfg.TokenExpires, log)
		user, err := auth.EnsureAdmin(cmd.Context(), adminName, adminEmail, adminPassword)
		if err != nil {
			log.Error("failed to create admin", zap.Error(err))
			return err
		}

		log.Info("admin ready", zap.String("id", user.ID.String()), zap.String("email", user.Email))
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "login password")
	rootCmd.AddCommand(createAdminCmd)
}
