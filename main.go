package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lotqc/clock"
	"lotqc/config"
	"lotqc/database"
	"lotqc/loader"
	"lotqc/lot"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	_ lot.Store = (*database.LotStore)(nil)
	_ lot.Store = (*database.MemoryStore)(nil)
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		setupLogger(config.Default())
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func setupLogger(cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

// run opens the store, seeds it once, and serves HTTP until ctx is done.
func run(ctx context.Context, cfg config.Config) error {
	store, closeStore, err := loader.OpenStore(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.SeedOnStart {
		if _, err := loader.SeedIfEmpty(ctx, store); err != nil {
			return err
		}
	}

	svc := lot.NewService(store, clock.NewRealClock())

	mux := http.NewServeMux()
	SetupRoutes(mux, svc)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           withMiddleware(mux, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Warn().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
