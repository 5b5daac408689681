package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mxcd/go-config/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/catalystkit/docsession/internal/server"
	"github.com/catalystkit/docsession/internal/util"
	"github.com/catalystkit/docsession/pkg/sessionstore"
)

func main() {
	err := util.InitConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("unable to initialize config")
	}
	config.Print()
	util.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := newBackend(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to initialize session storage backend")
	}

	store := sessionstore.NewStore(backend)

	interval := time.Duration(config.Get().Int("SWEEP_INTERVAL_SECONDS")) * time.Second
	go runSweeper(ctx, store, interval)

	s := server.NewServer(&server.ServerOptions{
		Port:    config.Get().Int("PORT"),
		Store:   store,
		Backend: backend,
	})

	go func() {
		if err := s.Run(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("unable to start http server")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("session store shutdown failed")
	}
}

func newBackend(ctx context.Context) (sessionstore.Backend, error) {
	switch backend := config.Get().String("SESSION_STORAGE_BACKEND"); backend {
	case "mongo":
		return sessionstore.NewMongoBackend(ctx, &sessionstore.MongoOptions{
			Host:       config.Get().String("SESSION_DB_HOST"),
			Port:       config.Get().Int("SESSION_DB_PORT"),
			Database:   config.Get().String("SESSION_DB_NAME"),
			Collection: config.Get().String("SESSION_DB_COLLECTION"),
			Username:   config.Get().String("SESSION_DB_USERNAME"),
			Password:   config.Get().String("SESSION_DB_PASSWORD"),
		})
	case "redis":
		return sessionstore.NewRedisBackend(ctx, &sessionstore.RedisOptions{
			Host:          config.Get().String("REDIS_HOST"),
			Port:          config.Get().Int("REDIS_PORT"),
			Password:      config.Get().String("REDIS_PASSWORD"),
			DatabaseIndex: config.Get().Int("REDIS_DB"),
		})
	case "memory":
		return sessionstore.NewMemoryBackend(config.Get().Int("MEMORY_MAX_SESSIONS")), nil
	default:
		return nil, errors.Errorf("unknown session storage backend %q", backend)
	}
}

func runSweeper(ctx context.Context, store *sessionstore.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, sweepCancel := context.WithTimeout(ctx, time.Minute)
			if err := store.SweepExpired(sweepCtx); err != nil {
				log.Error().Err(err).Msg("expired session sweep failed")
			}
			sweepCancel()
		}
	}
}
