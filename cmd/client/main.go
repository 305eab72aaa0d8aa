package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/itd-social/itd-client/internal/buildinfo"
	"github.com/itd-social/itd-client/internal/client/api"
	"github.com/itd-social/itd-client/internal/client/cli"
	"github.com/itd-social/itd-client/internal/client/config"
	"github.com/itd-social/itd-client/internal/client/repositories/credentials"
	"github.com/itd-social/itd-client/internal/client/services"
	"github.com/itd-social/itd-client/internal/client/session"
	"github.com/itd-social/itd-client/internal/client/store"
	"github.com/itd-social/itd-client/internal/cryptox"
	"github.com/itd-social/itd-client/internal/logging"

	_ "modernc.org/sqlite"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return err
	}

	// credentials live in a sealed sqlite store under the data dir
	db, err := credentials.OpenDB(ctx, filepath.Join(cfg.DataDir, "client.db"))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	key, err := cryptox.LoadOrCreateKey(filepath.Join(cfg.DataDir, "client.key"))
	if err != nil {
		return err
	}
	creds := credentials.NewSealed(credentials.NewSQLiteRepository(db), key)

	sess := session.NewManager(nil, creds, logger)

	apiClient := api.NewHTTPClient(api.Config{
		BaseURL: cfg.BaseURL,
		Tokens:  sess,
		Logger:  logger,
		Metrics: api.NewMetrics(prometheus.NewRegistry()),
		Timeout: cfg.RequestTimeout,
	})
	sess.SetAuthAPI(apiClient)

	if err := sess.Restore(ctx); err != nil {
		return err
	}

	engine := store.NewEngine(logger)
	posts := store.NewPostStore(apiClient, engine, logger)
	users := store.NewUserStore(apiClient, engine, logger)

	app := cli.NewApp(
		cfg,
		sess,
		services.NewPostService(apiClient, posts, logger, cfg.PageLimit),
		services.NewUserService(apiClient, users, logger, cfg.PageLimit),
		services.NewNotificationService(apiClient, logger, cfg.PageLimit),
		services.NewSearchService(apiClient, posts, logger, cfg.PageLimit),
		services.NewNotificationPoller(apiClient, sess, logger, cfg.PollInterval),
	)
	app.Run(ctx)
	return nil
}
