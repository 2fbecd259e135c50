package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/romeoalpha/admin/internal/logging"
	"github.com/romeoalpha/admin/migrations"
)

type migrateConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"INFO"`
}

// execer is the part of *pgxpool.Pool the migrator uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   apply pending migrations
  down        roll back the most recently applied migration
  fresh       drop every table, then apply all migrations in order`)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	var cfg migrateConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logging.Setup("INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		err = runIncremental(ctx, pool, migrations.FS)
	case "down":
		err = runDown(ctx, pool, migrations.FS)
	case "fresh":
		if err = runDropAll(ctx, pool, migrations.FS); err == nil {
			err = runIncremental(ctx, pool, migrations.FS)
		}
	default:
		usage()
	}
	if err != nil {
		logging.Fatal("migrate failed", "command", cmd, "error", err)
	}
}

// collectFiles returns the migration names with the given suffix, sorted.
func collectFiles(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			names = append(names, strings.TrimSuffix(e.Name(), suffix))
		}
	}
	sort.Strings(names)
	return names, nil
}

func ensureSchemaMigrations(ctx context.Context, db execer) error {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

// ---------------------------------------------------------------------------
// (default) pending migrations
// ---------------------------------------------------------------------------
func runIncremental(ctx context.Context, db execer, fsys fs.FS) error {
	if err := ensureSchemaMigrations(ctx, db); err != nil {
		return err
	}

	names, err := collectFiles(fsys, ".up.sql")
	if err != nil {
		return err
	}
	applied := 0
	for _, name := range names {
		var exists bool
		if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists); err != nil {
			return fmt.Errorf("check %s: %w", name, err)
		}
		if exists {
			continue
		}

		sql, err := fs.ReadFile(fsys, name+".up.sql")
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
		applied++
		slog.Info("migration completed", "migration", name)
	}

	if applied == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", applied)
	}
	return nil
}

// ---------------------------------------------------------------------------
// roll back the latest migration
// ---------------------------------------------------------------------------
func runDown(ctx context.Context, db execer, fsys fs.FS) error {
	if err := ensureSchemaMigrations(ctx, db); err != nil {
		return err
	}
	var name string
	err := db.QueryRow(ctx, "SELECT name FROM schema_migrations ORDER BY name DESC LIMIT 1").Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		slog.Info("nothing to roll back")
		return nil
	}
	if err != nil {
		return err
	}

	sql, err := fs.ReadFile(fsys, name+".down.sql")
	if err != nil {
		return fmt.Errorf("no down migration for %s: %w", name, err)
	}
	if _, err := db.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("roll back %s: %w", name, err)
	}
	if _, err := db.Exec(ctx, "DELETE FROM schema_migrations WHERE name=$1", name); err != nil {
		return err
	}
	slog.Info("migration rolled back", "migration", name)
	return nil
}

// ---------------------------------------------------------------------------
// drop every table
// ---------------------------------------------------------------------------
func runDropAll(ctx context.Context, db execer, fsys fs.FS) error {
	slog.Info("dropping all tables")
	sql, err := fs.ReadFile(fsys, "000_drop_all.sql")
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}
	slog.Info("all tables dropped")
	return nil
}
