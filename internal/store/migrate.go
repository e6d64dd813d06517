package store

import (
	"embed"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const sqlDialect = "postgres"

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate runs the embedded goose migrations against pool. Connections are
// borrowed from the pool and returned once the migration finishes.
//
// goose keeps its dialect and filesystem in package state, so concurrent calls
// within one process are not supported.
func Migrate(pool *pgxpool.Pool, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(logger)
	if err := goose.SetDialect(sqlDialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	logger.Println("store: checking for pending migrations")
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Println("store: migrations complete")
	return nil
}
