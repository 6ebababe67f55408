package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/server"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:               "serve",
	Short:             "Run the HTTP API",
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "create the accounts schema before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.RedisTimeout,
		ReadTimeout:  cfg.RedisTimeout,
		WriteTimeout: cfg.RedisTimeout,
	})
	defer rdb.Close()

	dir, closeDir, err := openDirectory(ctx, cfg, logger, migrateOnStart)
	if err != nil {
		return err
	}
	defer closeDir()

	engine, err := goAccount.New().
		WithConfig(cfg.Engine()).
		WithRedis(rdb).
		WithDirectory(dir).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	if status := engine.Health(ctx); !status.RedisAvailable {
		logger.Warn().Str("addr", cfg.RedisAddr).Msg("redis unreachable at startup; reissue will fail until it recovers")
	}

	e := server.New(engine, server.Config{
		CORSOrigins:    cfg.CORSOrigins,
		RequestsPerSec: cfg.RequestsPerSec,
		RequestBurst:   cfg.RequestBurst,
		Logger:         logger,
	})

	logger.Info().Str("addr", cfg.HTTPAddr).Str("directory", cfg.DirectoryDriver).Msg("starting goaccount")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Dur("uptime", time.Since(startedAt)).Msg("stopped")
	return nil
}
