package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"flipquiz/internal/auth"
	"flipquiz/internal/blob"
	"flipquiz/internal/config"
	"flipquiz/internal/db"
	"flipquiz/internal/logger"
	"flipquiz/internal/realtime"
	"flipquiz/internal/server"
	"flipquiz/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cobra.CheckErr(newCmd().Execute())
}

// flagEnv maps command-line flags to the environment variables they override.
var flagEnv = map[string]string{
	"port":         "PORT",
	"database-url": "DATABASE_URL",
	"log-level":    "LOG_LEVEL",
	"log-format":   "LOG_FORMAT",
	"blob-driver":  "BLOB_DRIVER",
	"redis-addr":   "REDIS_ADDR",
}

func newCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "flipquiz",
		Short:         "Realtime drawing quiz server.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := config.LoadDotEnv(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", envFile, err)
			}
			cfg := config.LoadFrom(v)
			logger.Setup(cfg.LogLevel, cfg.LogFormat)
			migrate, _ := cmd.Flags().GetBool("migrate")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, migrate)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.IntP("port", "p", 0, "port to listen on (env: PORT)")
	fs.String("database-url", "", "postgres connection string; empty keeps data in memory (env: DATABASE_URL)")
	fs.String("log-level", "", "zerolog level (env: LOG_LEVEL)")
	fs.String("log-format", "", "console or json (env: LOG_FORMAT)")
	fs.String("blob-driver", "", "memory, minio or supabase (env: BLOB_DRIVER)")
	fs.String("redis-addr", "", "redis address for fanning out changes (env: REDIS_ADDR)")
	fs.String("env-file", ".env", "dotenv file loaded before reading the environment")
	fs.Bool("migrate", true, "run schema migrations on start")
	for flag, env := range flagEnv {
		cobra.CheckErr(v.BindPFlag(env, fs.Lookup(flag)))
	}
	return cmd
}

func run(ctx context.Context, cfg config.Config, migrate bool) error {
	repo, err := openRepository(cfg, migrate)
	if err != nil {
		return err
	}

	blobs, err := blob.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	hub := realtime.NewHub()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		hub.AttachBridge(ctx, realtime.NewRedisBridge(client, cfg.RedisChannel))
		log.Info().Str("addr", cfg.RedisAddr).Str("channel", cfg.RedisChannel).Msg("realtime bridge attached")
	}

	st := store.New(repo, blobs, hub, store.Options{
		DefaultMaxParticipants: cfg.DefaultMaxParticipants,
		MaxParticipantsLimit:   cfg.MaxParticipantsLimit,
	})
	srv := server.New(st, cfg)
	if memory, ok := blobs.(*blob.Memory); ok {
		srv.ServeBlobs(memory)
	}
	provider, err := auth.NewGoogle(cfg)
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		log.Warn().Msg("google sign-in is not configured; players cannot sign in")
	case err != nil:
		return fmt.Errorf("sign-in provider: %w", err)
	default:
		srv.SetProvider(provider)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("blob_driver", cfg.BlobDriver).Msg("flipquiz listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openRepository(cfg config.Config, migrate bool) (store.Repository, error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL is not set; data is kept in memory")
		return store.NewMemoryRepository(), nil
	}
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if migrate {
		if err := db.Migrate(conn); err != nil {
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
	}
	return store.NewGormRepository(conn), nil
}
