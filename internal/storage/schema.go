package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema(ctx context.Context) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createRunsTable(tx); err != nil {
			return err
		}
		if err := createRunModulesTable(tx); err != nil {
			return err
		}
		if err := createRunEdgesTable(tx); err != nil {
			return err
		}
		if err := createRunCyclesTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations(ctx context.Context) error {
	version, err := db.getSchemaVersion(ctx)
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", "version", version)
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	db.logger.Info("Running database migrations", "from_version", version, "to_version", currentSchemaVersion)

	// A file without a version table predates any schema; create it from scratch.
	if version == 0 {
		return db.initializeSchema(ctx)
	}
	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion(ctx context.Context) (int, error) {
	var tableName string
	err := db.conn.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createRunsTable creates one row per stored analysis run
func createRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			descriptors INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			modules INTEGER NOT NULL,
			edges INTEGER NOT NULL,
			applications INTEGER NOT NULL,
			shared INTEGER NOT NULL,
			cycles INTEGER NOT NULL,
			warnings INTEGER NOT NULL,
			declaration_checksum TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root)",
		"CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// createRunModulesTable creates the per-run module table
func createRunModulesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS run_modules (
			run_id TEXT NOT NULL,
			pom_path TEXT NOT NULL,
			gav TEXT NOT NULL,
			group_id TEXT,
			artifact_id TEXT NOT NULL,
			version TEXT,
			packaging TEXT NOT NULL,
			module_dir TEXT NOT NULL,
			role TEXT NOT NULL,

			PRIMARY KEY (run_id, pom_path),
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create run_modules table: %w", err)
	}

	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_run_modules_role ON run_modules(run_id, role)"); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// createRunEdgesTable creates the per-run dependency edge table
func createRunEdgesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS run_edges (
			run_id TEXT NOT NULL,
			from_path TEXT NOT NULL,
			to_path TEXT NOT NULL,
			from_gav TEXT NOT NULL,
			to_gav TEXT NOT NULL,

			PRIMARY KEY (run_id, from_path, to_path),
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create run_edges table: %w", err)
	}
	return nil
}

// createRunCyclesTable creates the per-run cycle table
func createRunCyclesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS run_cycles (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			members TEXT NOT NULL,

			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create run_cycles table: %w", err)
	}
	return nil
}
