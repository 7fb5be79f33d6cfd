package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sonuudigital/lovecakes/internal/logs"
)

const connectTimeout = 5 * time.Second

// InitializePostgresDB opens the pool, checks it answers and brings the
// schema up to date.
func InitializePostgresDB(ctx context.Context, databaseURL, migrationsDir string, logger logs.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err = db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	version, err := RunMigrations(databaseURL, migrationsDir)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("database ready", "schemaVersion", version)

	return db, nil
}

// RunMigrations applies every pending up migration in dir and returns the
// resulting schema version.
func RunMigrations(databaseURL, dir string) (uint, error) {
	m, err := migrate.New(SourceURL(dir), databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

func SourceURL(dir string) string {
	return (&url.URL{Scheme: "file", Path: dir}).String()
}
