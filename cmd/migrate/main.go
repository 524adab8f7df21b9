package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flipquiz/internal/config"
	"flipquiz/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const migrationsDir = "db/migrations"

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or create SQL migrations.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(upCmd(cfg), downCmd(cfg), createCmd())
	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
}

func open(cfg config.Config) (*migrate.Migrate, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	m, err := migrate.New("file://"+migrationsDir, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("migration setup failed: %w", err)
	}
	return m, nil
}

func upCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cfg)
			if err != nil {
				return err
			}
			defer m.Close()
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			log.Info().Msg("database migrations applied")
			return nil
		},
	}
}

func downCmd(cfg config.Config) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return errors.New("--steps must be at least 1")
			}
			m, err := open(cfg)
			if err != nil {
				return err
			}
			defer m.Close()
			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			log.Info().Int("steps", steps).Msg("database migrations rolled back")
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create empty up and down migration files.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if strings.ContainsAny(name, " /") {
				return errors.New("migration name must not contain spaces or slashes")
			}
			base := time.Now().UTC().Format("20060102150405") + "_" + name
			upPath := filepath.Join(migrationsDir, base+".up.sql")
			downPath := filepath.Join(migrationsDir, base+".down.sql")
			if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
				return fmt.Errorf("create migrations dir: %w", err)
			}
			if err := writeNew(upPath, "-- up migration\n"); err != nil {
				return err
			}
			if err := writeNew(downPath, "-- down migration\n"); err != nil {
				return err
			}
			log.Info().Str("up", upPath).Str("down", downPath).Msg("migration created")
			return nil
		},
	}
}

func writeNew(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
