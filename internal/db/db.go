package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// Columns that early databases lack or left nullable. Missing ones are added
// via ALTER TABLE and NULLs left by earlier versions are backfilled.
var eventColumns = []struct {
	name       string
	definition string
	fill       string
}{
	{name: "user_email", definition: "TEXT NOT NULL DEFAULT ''", fill: "''"},
	{name: "collaborators", definition: "TEXT NOT NULL DEFAULT ''", fill: "''"},
	{name: "priority", definition: "TEXT NOT NULL DEFAULT 'Normal'", fill: "'Normal'"},
	{name: "notes", definition: "TEXT NOT NULL DEFAULT ''", fill: "''"},
	{name: "files", definition: "TEXT NOT NULL DEFAULT '[]'", fill: "'[]'"},
	{name: "created_at", definition: "TIMESTAMP NOT NULL DEFAULT '1970-01-01 00:00:00'", fill: "CURRENT_TIMESTAMP"},
}

func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every new connection would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	for _, column := range eventColumns {
		if err := ensureEventColumn(ctx, db, column.name, column.definition, column.fill); err != nil {
			return err
		}
	}

	return nil
}

func ensureEventColumn(ctx context.Context, db *sql.DB, name, definition, fill string) error {
	var exists int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM pragma_table_info('events') WHERE name = ? LIMIT 1", name).Scan(&exists)
	if err == sql.ErrNoRows {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE events ADD COLUMN %s %s", name, definition)); err != nil {
			return fmt.Errorf("add events.%s column: %w", name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("check events.%s column: %w", name, err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("UPDATE events SET %s = %s WHERE %s IS NULL", name, fill, name)); err != nil {
		return fmt.Errorf("backfill events.%s: %w", name, err)
	}
	return nil
}
