package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deck-dash-service/internal/app"
	"deck-dash-service/internal/config"
	"deck-dash-service/internal/domain"
	"deck-dash-service/internal/infra/memory"
	pgstore "deck-dash-service/internal/infra/postgres"
	redisstore "deck-dash-service/internal/infra/redis"
	"deck-dash-service/internal/infra/sheets"
	"deck-dash-service/internal/infra/webhook"
	"deck-dash-service/internal/logging"
	"deck-dash-service/internal/scheduler"
	transport "deck-dash-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the deck server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	loader, cleanup, err := newRowLoader(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	freshness := config.TTLDuration(cfg.Sheet.Freshness, config.DefaultFreshness)
	var rows interface {
		app.RowRepository
		scheduler.RowCache
	}
	if redisClient != nil {
		rows = redisstore.NewRowRepository(redisClient, loader, freshness, log)
	} else {
		rows = memory.NewRowRepository(loader, freshness)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, time.Hour))
	} else {
		store = memory.NewSessionStore()
	}

	decks := app.NewDeckService(rows)
	play := app.NewPlayService(decks, store)

	if raw := cfg.Sheet.RefreshInterval; raw != "" {
		refresher := scheduler.NewRefresher(rows, config.TTLDuration(raw, freshness), log)
		if err := refresher.Start(); err != nil {
			return err
		}
		defer refresher.Stop()
	}

	relay := webhook.NewRelay(cfg.Webhook.URL, config.TTLDuration(cfg.Webhook.Timeout, 10*time.Second))
	if !relay.Configured() {
		log.Warn("webhook url not set; deck requests will be rejected")
	}

	router := transport.NewRouter(
		transport.RouterOptions{CORSOrigins: cfg.Server.CORSOrigins, Logger: log},
		transport.NewAPIHandler(decks, relay, cfg.Round.Limit, log),
		transport.NewImageProxy(cfg.Proxy.AllowedDomains, config.TTLDuration(cfg.Proxy.Timeout, 15*time.Second), log),
		transport.NewWSHandler(play, cfg.Round.Limit, log),
	)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting deck service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRowLoader picks the content source: Postgres, then a local workbook, then the published sheet.
func newRowLoader(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (memory.RowLoader, func(), error) {
	noop := func() {}
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, noop, err
		}
		log.Info("serving decks from postgres")
		return pgstore.NewRowLoader(pool), pool.Close, nil
	case cfg.Sheet.XLSXPath != "":
		log.WithField("path", cfg.Sheet.XLSXPath).Info("serving decks from workbook")
		return sheets.NewXLSXLoader(cfg.Sheet.XLSXPath, cfg.Sheet.XLSXSheet), noop, nil
	case cfg.Sheet.URL != "":
		log.Info("serving decks from published sheet")
		return sheets.NewCSVLoader(cfg.Sheet.URL, config.TTLDuration(cfg.Sheet.Timeout, 30*time.Second)), noop, nil
	default:
		return nil, noop, domain.ErrSourceNotConfigured
	}
}
