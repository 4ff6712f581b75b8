package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/gemmarket/internal/cache"
	"github.com/example/gemmarket/internal/config"
	"github.com/example/gemmarket/internal/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	defer log.Sync()
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return err
	}

	store, closeStore, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	app := routes.NewApp(db, cfg, cache.New(store, log), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Warn("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("starting server", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
	return app.Listen(":" + cfg.AppPort)
}

// openStore picks Redis when REDIS_URL is set and the in-process store
// otherwise.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Store, func(), error) {
	if cfg.RedisURL == "" {
		log.Info("using in-memory cache")
		return cache.NewMemoryStore(), func() {}, nil
	}

	store, err := cache.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", zap.Error(err))
		return nil, nil, err
	}
	log.Info("using redis cache")
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn("closing redis", zap.Error(err))
		}
	}, nil
}
