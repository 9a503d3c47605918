package history

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/akam1o/mcli/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrator applies the embedded schema migrations in version order.
type migrator struct {
	db     *sql.DB
	dbPath string
	log    *logger.Logger
}

// migration represents a single migration file.
type migration struct {
	version int
	name    string
	content string
}

// currentVersion returns the current schema version.
func (m *migrator) currentVersion() (int, error) {
	if _, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL
		)
	`); err != nil {
		return 0, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := m.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

// apply applies all pending migrations.
func (m *migrator) apply() error {
	current, err := m.currentVersion()
	if err != nil {
		return err
	}

	migrations, err := migrationFiles()
	if err != nil {
		return fmt.Errorf("failed to get migration files: %w", err)
	}
	if len(migrations) == 0 {
		return fmt.Errorf("no migration files found")
	}

	var pending []migration
	for _, mig := range migrations {
		if mig.version > current {
			pending = append(pending, mig)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	// Back up an existing database before touching its schema
	if current > 0 {
		backupPath, err := m.backup()
		if err != nil {
			return err
		}
		if backupPath != "" {
			m.log.Info("Created history database backup", slog.String("path", backupPath))
		}
	}

	for _, mig := range pending {
		if err := m.applyOne(mig); err != nil {
			return fmt.Errorf("failed to apply migration %03d: %w", mig.version, err)
		}
		m.log.Debug("Applied migration",
			slog.Int("version", mig.version),
			slog.String("name", mig.name),
		)
	}
	return nil
}

// backup copies the database with VACUUM INTO.
func (m *migrator) backup() (string, error) {
	if m.dbPath == "" || m.dbPath == ":memory:" {
		return "", nil
	}
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", nil
	}

	backupPath := fmt.Sprintf("%s.backup.%s", m.dbPath, time.Now().Format("20060102_150405"))

	// VACUUM INTO does not take bound parameters; quote the literal instead
	escaped := strings.ReplaceAll(backupPath, "'", "''")
	if _, err := m.db.Exec(fmt.Sprintf("VACUUM INTO '%s'", escaped)); err != nil {
		return "", fmt.Errorf("failed to create database backup: %w", err)
	}
	if err := os.Chmod(backupPath, 0600); err != nil {
		return "", fmt.Errorf("failed to set backup file permissions: %w", err)
	}
	return backupPath, nil
}

// migrationFiles returns all migration files sorted by version.
func migrationFiles() ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		// Parse version from filename (e.g., "001_init.sql" -> 1)
		var version int
		var name string
		if _, err := fmt.Sscanf(entry.Name(), "%03d_%s", &version, &name); err != nil {
			return nil, fmt.Errorf("invalid migration filename: %s", entry.Name())
		}

		content, err := fs.ReadFile(migrationsFS, path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, migration{
			version: version,
			name:    entry.Name(),
			content: string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

// applyOne runs one migration and records its version in the same
// transaction.
func (m *migrator) applyOne(mig migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(mig.content); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`,
		mig.version, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
