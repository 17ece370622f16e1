package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/feed"
	"github.com/danielhkuo/livepoll/logger"
	"github.com/danielhkuo/livepoll/metrics"
	"github.com/danielhkuo/livepoll/router"
	"github.com/danielhkuo/livepoll/service"
	"github.com/danielhkuo/livepoll/store"
	"github.com/danielhkuo/livepoll/tally"
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error parsing flags")
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatal().Err(err).Msg("logger setup failed")
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the store
	var st store.Store
	switch cfg.DatabaseType {
	case "memory":
		st = store.NewMemoryStore()
		log.Warn().Msg("using in-memory store; sessions are lost on restart")
	default:
		sqlStore, err := store.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Str("type", cfg.DatabaseType).Msg("database setup failed")
		}
		defer sqlStore.Close()
		st = sqlStore
	}
	log.Info().Str("type", cfg.DatabaseType).Msg("database ready")

	// Change feed, relayed across instances when Redis is configured
	broker := feed.NewBroker()
	if cfg.RedisURL != "" {
		client, err := feed.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer client.Close()

		relay := feed.NewRedisRelay(client, broker)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error().Err(err).Msg("relay stopped")
			}
		}()
	}

	scorer, err := tally.NewScorer(cfg.Scoring)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scoring")
	}

	svc := service.New(st, broker, service.Options{
		ControllerSalt:  cfg.ControllerSalt,
		ParticipantSalt: cfg.ParticipantSalt,
		BaseURL:         cfg.BaseURL,
		Scorer:          scorer,
	})

	if cfg.SeedFile != "" {
		f, err := os.Open(cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot open seed file")
		}
		n, err := svc.ImportSeed(ctx, f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("seed import failed")
		}
		log.Info().Int("polls", n).Str("file", cfg.SeedFile).Msg("seed imported")
	}

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(svc),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
		// feed connections are hijacked and outlive Shutdown; their request
		// contexts derive from ctx so they end on the same signal
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	log.Info().Int("port", cfg.Port).Str("base_url", cfg.BaseURL).Str("scoring", scorer.Name()).Msg("listening")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server closed")
	} else {
		log.Info().Msg("server closed")
	}
}
