package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/config"
	"github.com/example/gemmarket/internal/database"
	"github.com/example/gemmarket/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gemmarket",
	Short: "Gem market backend",
	Long:  "Back-office and public API for the gemstone and jewellery marketplace",
	RunE:  runServe,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

// bootstrap loads configuration and opens the database. The caller owns
// the returned logger and must sync it.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg := config.Load()
	log := logger.New(cfg)

	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, log, nil, err
	}
	return cfg, log, db, nil
}
