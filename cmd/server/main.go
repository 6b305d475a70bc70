package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/caresync/signaling/internal/adapters/http"
	wsignal "github.com/caresync/signaling/internal/adapters/signal"
	"github.com/caresync/signaling/internal/app"
	"github.com/caresync/signaling/internal/config"
	"github.com/caresync/signaling/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	history, closeStore := newHistory(cfg)
	defer closeStore()

	presence := app.NewPresence()
	rooms := app.NewRooms()
	limiter := app.NewCallRateLimiter(cfg.CallRateLimit, cfg.CallRateInterval)
	relay := app.NewRelay(presence, rooms, limiter)
	chat := app.NewChatRelay(rooms)
	orch := app.NewOrchestrator(presence, rooms, relay, chat)

	ctrl := wsignal.NewController(cfg, orch, history)
	r := router.SetupRouter(ctx, cfg, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// newHistory picks the chat history backend: redis when configured,
// otherwise process memory (dev default, nothing survives a restart).
func newHistory(cfg *config.Config) (storage.MessageStore, func()) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("no redis configured, chat history kept in memory")
		return storage.NewMemoryHistory(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	store, err := storage.NewRedisHistory(client, int64(cfg.HistoryLimit))
	if err != nil {
		log.Fatal().Err(err).Msg("init redis history")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("chat history backed by redis")
	return store, func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis client")
		}
	}
}
