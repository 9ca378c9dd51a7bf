// Package db provides database connectivity and migration functionality for the
// learnhub application. It handles establishing the connection pool, enabling
// required PostgreSQL extensions, and running database migrations.
// This package centralizes database concerns the way `mongoose.connect` plus the
// schema files did in the original Express backend, providing a pool to the rest
// of the application.
package db

import (
	"context"
	"fmt"
	"log"
	// `time` is used for setting timeouts and connection pool configurations.
	"time"

	// `golang-migrate` is a popular library for database migrations in Go.
	// It supports various database drivers and migration source formats (like SQL files).
	"github.com/golang-migrate/migrate/v4"
	// Imported for its side effect: registering the file source driver.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	// The `postgres` database driver of golang-migrate uses `database/sql`
	// under the hood, which needs the `lib/pq` driver registered.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
	// `pgxpool` is part of the `jackc/pgx` suite, providing a robust connection pool for PostgreSQL.
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/config"
)

// NewPool establishes a connection pool to PostgreSQL using the provided configuration.
//
// The function uses the pgx/v5 driver which provides better performance than lib/pq.
// It configures the pool with appropriate settings based on the configuration,
// including max connections, connection lifetime, and idle connection management.
func NewPool(cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&pool_max_conns=%d&pool_max_conn_idle_time=%s&pool_max_conn_lifetime=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		cfg.MaxSize,
		(10 * time.Minute).String(),
		(30 * time.Minute).String(),
	)

	// `pgxpool.ParseConfig` parses the DSN string into a `pgxpool.Config` struct.
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	// Further configure the pool settings directly on the `poolConfig` struct.
	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	// Use a context with a timeout for the pool creation process.
	// This prevents indefinite blocking if the database is unreachable.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	// Verify the connection by pinging before handing the pool to callers.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close() // Clean up on connection failure
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s with pgxpool", cfg.DBName), err)
	}

	return pool, nil
}

// getDSN constructs a DSN string from DatabaseConfig, suitable for golang-migrate.
// golang-migrate's postgres driver typically uses a lib/pq format DSN rather
// than the pgx pool parameters above.
func getDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)
}

// EnableExtensions enables required PostgreSQL extensions for the learnhub application.
// It currently enables pg_trgm, which backs the trigram indexes used by the
// case-insensitive substring searches on course titles and user emails.
func EnableExtensions(pool *pgxpool.Pool) error {
	extensions := []string{"pg_trgm"}

	for _, ext := range extensions {
		// `CREATE EXTENSION IF NOT EXISTS` is idempotent; it won't error if the extension already exists.
		query := fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s;", ext)

		// Execute the query with a timeout. `cancel` is called after each Exec
		// rather than deferred, so the context cannot expire prematurely for
		// later iterations.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := pool.Exec(ctx, query)
		cancel()
		if err != nil {
			return apperror.NewDatabaseError(fmt.Sprintf("failed to create extension %s", ext), err)
		}
	}

	return nil
}

// RunMigrations applies any pending database migrations from the specified directory.
// It uses golang-migrate to handle migration versioning and execution. The
// migrations directory contains paired up/down SQL files (e.g.
// 000001_create_users.up.sql / 000001_create_users.down.sql).
func RunMigrations(cfg *config.DatabaseConfig, migrationsPath string) error {
	// golang-migrate opens its own database/sql connection from the DSN; the
	// pgx pool is not usable here.
	dsn := getDSN(cfg)

	m, err := migrate.New(
		// `file://` specifies that migrations are read from the local filesystem.
		"file://"+migrationsPath,
		dsn,
	)
	if err != nil {
		return apperror.NewMigrationError("failed to create migrator", err)
	}
	// It's important to close the source and database instance that migrate
	// creates. m.Close() returns two errors, one for each.
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			if srcErr != nil {
				log.Printf("Warning: error closing migration source: %v", srcErr)
			}
			if dbErr != nil {
				log.Printf("Warning: error closing migration database instance: %v", dbErr)
			}
		}
	}()

	// `m.Up()` applies all available "up" migrations.
	// `migrate.ErrNoChange` is returned if there are no new migrations to apply,
	// which is not an actual error.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return apperror.NewMigrationError("failed to run migrations", err)
	}

	return nil
}
