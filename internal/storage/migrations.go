package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					icon TEXT NOT NULL DEFAULT '',
					is_default INTEGER NOT NULL DEFAULT 0,
					created_at INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_categories_type ON categories(type)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					amount REAL NOT NULL CHECK (amount > 0),
					note TEXT,
					date INTEGER NOT NULL,
					category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					created_at INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_category_id ON transactions(category_id)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add singleton balance table",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS balance (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					amount REAL NOT NULL DEFAULT 0,
					last_updated INTEGER NOT NULL
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Enforce case-insensitive category names per type",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`ALTER TABLE categories ADD COLUMN name_key TEXT NOT NULL DEFAULT ''`); err != nil {
				return fmt.Errorf("failed to add name_key column: %w", err)
			}

			// Backfill in Go: SQLite's lower() only folds ASCII.
			rows, err := tx.Query(`SELECT id, name FROM categories`)
			if err != nil {
				return fmt.Errorf("failed to read categories: %w", err)
			}
			keys := make(map[int64]string)
			for rows.Next() {
				var id int64
				var name string
				if err := rows.Scan(&id, &name); err != nil {
					_ = rows.Close()
					return fmt.Errorf("failed to scan category: %w", err)
				}
				keys[id] = NameKey(name)
			}
			if err := rows.Close(); err != nil {
				return fmt.Errorf("failed to close category rows: %w", err)
			}

			for id, key := range keys {
				if _, err := tx.Exec(`UPDATE categories SET name_key = ? WHERE id = ?`, key, id); err != nil {
					return fmt.Errorf("failed to backfill name_key for category %d: %w", id, err)
				}
			}

			_, err = tx.Exec(`CREATE UNIQUE INDEX idx_categories_name_key_type ON categories(name_key, type)`)
			return err
		},
	},
}

// Migrate applies all pending database migrations. A database written by a
// newer schema, or one whose migrations fail, is wiped and rebuilt when
// destructive migrations are enabled.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	if currentVersion > ExpectedSchemaVersion {
		if !s.destructiveMigrations {
			return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, ExpectedSchemaVersion)
		}
		slog.Warn("database schema is newer than this build, recreating storage",
			"found", currentVersion,
			"expected", ExpectedSchemaVersion)
		if err := s.resetSchema(ctx); err != nil {
			return err
		}
		currentVersion = 0
	}

	if err := s.applyMigrations(ctx, currentVersion); err != nil {
		if !s.destructiveMigrations {
			return err
		}
		slog.Warn("migration failed, recreating storage", "error", err)
		if resetErr := s.resetSchema(ctx); resetErr != nil {
			return fmt.Errorf("%w (reset also failed: %v)", err, resetErr)
		}
		if err := s.applyMigrations(ctx, 0); err != nil {
			return err
		}
	}

	finalVersion, err := s.schemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

func (s *SQLiteStorage) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

func (s *SQLiteStorage) applyMigrations(ctx context.Context, currentVersion int) error {
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		slog.Info("applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}
	return nil
}

// resetSchema drops every user table and resets the schema version.
func (s *SQLiteStorage) resetSchema(ctx context.Context) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// foreign_keys cannot be toggled inside a transaction.
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("failed to disable foreign keys: %w", err)
	}
	defer func() { _, _ = conn.ExecContext(ctx, "PRAGMA foreign_keys = ON") }()

	rows, err := conn.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("failed to close table rows: %w", err)
	}

	for _, table := range tables {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	if _, err := conn.ExecContext(ctx, "PRAGMA user_version = 0"); err != nil {
		return fmt.Errorf("failed to reset schema version: %w", err)
	}

	slog.Info("recreated storage", "dropped_tables", len(tables))
	return nil
}

// SchemaVersion reports the schema version recorded in the database file.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	return s.schemaVersion(ctx)
}
