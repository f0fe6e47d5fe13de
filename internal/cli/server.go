package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnitquick/internal/app"
	"learnitquick/internal/config"
	"learnitquick/internal/infra/memory"
	pgstore "learnitquick/internal/infra/postgres"
	redisstore "learnitquick/internal/infra/redis"
	"learnitquick/internal/logger"
	transport "learnitquick/internal/transport/http"

	"github.com/coder/quartz"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// postgres is the durable record when configured, redis otherwise
	var backing app.ProfileStore = memory.NewProfileStore()
	switch {
	case pool != nil:
		backing = pgstore.NewProfileStore(pool)
	case redisClient != nil:
		backing = redisstore.NewProfileStore(redisClient)
	}
	profiles := memory.NewProfileCache(backing, config.TTLDuration(cfg.Profile.TTL, 10*time.Minute))

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	service := app.NewGameService(store, profiles, quartz.NewReal(), log, gameOptions(cfg))
	wsHandler := transport.NewWSHandler(service, log)
	apiHandler := transport.NewAPIHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting game server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// gameOptions reads the game section, falling back to the default pacing.
func gameOptions(cfg config.Config) app.Options {
	return app.Options{
		Timing: app.Timing{
			QuestionTime:  config.TTLDuration(cfg.Game.QuestionTime, app.DefaultTiming.QuestionTime),
			GetReady:      config.TTLDuration(cfg.Game.GetReady, app.DefaultTiming.GetReady),
			FeedbackDelay: config.TTLDuration(cfg.Game.FeedbackDelay, app.DefaultTiming.FeedbackDelay),
		},
		Questions: cfg.Game.Questions,
		Seed:      cfg.Game.Seed,
	}
}
