package loader

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"lotqc/database"
	"lotqc/lot"

	"github.com/jmoiron/sqlx"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Drivers accepted by OpenStore. "memory" needs no DSN.
const (
	DriverSQLite3  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverSQLite   = "sqlite"  // modernc.org/sqlite, no cgo
	DriverPostgres = "pgx"     // github.com/jackc/pgx/v5/stdlib
	DriverMemory   = "memory"
)

// OpenStore opens the configured backend and applies the schema. The
// returned close function is always non-nil.
func OpenStore(ctx context.Context, driver, dsn string) (lot.Store, func() error, error) {
	if driver == DriverMemory {
		log.Info().Msg("Using in-memory lot store. Data will not survive a restart.")
		return database.NewMemoryStore(), func() error { return nil }, nil
	}

	log.Info().Str("driver", driver).Msg("Connecting to database...")
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, func() error { return nil }, fmt.Errorf("db open error: %w", err)
	}
	if driver == DriverSQLite3 || driver == DriverSQLite {
		// SQLite has a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, func() error { return nil }, fmt.Errorf("db ping error: %w", err)
	}
	log.Info().Msg("Database connection successful.")

	if err := InitDatabase(ctx, db); err != nil {
		db.Close()
		return nil, func() error { return nil }, err
	}
	return database.NewLotStore(db), db.Close, nil
}

// InitDatabase applies the schema for the connected dialect. It is safe to
// run on every start.
func InitDatabase(ctx context.Context, db *sqlx.DB) error {
	log.Info().Msg("Applying database schema...")
	if err := applySchema(ctx, db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Info().Msg("Schema applied successfully.")
	return nil
}

func applySchema(ctx context.Context, db *sqlx.DB) error {
	file := "schema/sqlite.sql"
	if sqlx.BindType(db.DriverName()) == sqlx.DOLLAR {
		file = "schema/postgres.sql"
	}
	schemaBytes, err := schemaFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", file, err)
	}
	for _, stmt := range strings.Split(string(schemaBytes), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement from %s: %w", file, err)
		}
	}
	return nil
}
