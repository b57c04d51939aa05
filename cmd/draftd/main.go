package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/draftdex/draftdex/internal/config"
	"github.com/draftdex/draftdex/internal/feed"
	"github.com/draftdex/draftdex/internal/gateway"
	"github.com/draftdex/draftdex/internal/repository"
	"github.com/draftdex/draftdex/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("draftd exited")
	}
}

func run() error {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	log.Info().Str("database", cfg.DB.Database).Msg("connected to Postgres")

	formats, err := config.LoadFormats(cfg.FormatsPath)
	if err != nil {
		return err
	}
	log.Info().Int("formats", len(formats)).Msg("loaded format sheets")

	picks := repository.NewPickRepository(pool)
	sessions := session.NewManager(picks, clockwork.NewRealClock())

	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go cm.Start(ctx)

	dispatcher := feed.NewDispatcher(sessions)
	dispatcher.OnChange(func(roomCode string, env feed.Envelope) {
		cm.BroadcastToRoom(roomCode, env)
	})
	dispatcher.OnDraftDeleted(func(roomCode string) {
		cm.CloseRoom(roomCode)
	})

	consumer, err := feed.NewConsumer(dispatcher, feed.ConsumerConfig{
		URL:           cfg.NATSUrl,
		StreamName:    "DRAFT_STATE",
		ConsumerName:  "draftdex-state",
		SubjectFilter: "draft.state.>",
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
		MaxAckPending: 100,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	})
	if err != nil {
		return err
	}
	defer consumer.Stop()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("feed consumer stopped")
			stop()
		}
	}()

	mux := http.NewServeMux()
	gateway.NewHandler(sessions, cm).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: gateway.WithCORS(mux, cfg.AllowedOrigins),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("draftd stopped")
	return nil
}
