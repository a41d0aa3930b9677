package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the schema history. Append only; never edit an applied
// entry.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_datasets",
		SQL: `
			CREATE TABLE IF NOT EXISTS _datasets (
				_id TEXT PRIMARY KEY,
				NAME TEXT NOT NULL,
				TABLENAME TEXT NOT NULL DEFAULT '',
				COLUMNNAME TEXT NOT NULL DEFAULT '',
				PREDICATE TEXT NOT NULL DEFAULT '',
				COMMENTS TEXT NOT NULL DEFAULT '',
				AXIAL INTEGER NOT NULL DEFAULT 0,
				CREATED_AT TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UPDATED_AT TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_values",
		SQL: `
			CREATE TABLE IF NOT EXISTS _values (
				DATASET_ID TEXT NOT NULL REFERENCES _datasets(_id) ON DELETE CASCADE,
				SEQ INTEGER NOT NULL,
				VALUE REAL NOT NULL,
				PRIMARY KEY (DATASET_ID, SEQ)
			)
		`,
	},
	{
		Version: 3,
		Name:    "create_geometry_controller",
		SQL: `
			CREATE TABLE IF NOT EXISTS _geometryController (
				_id INTEGER PRIMARY KEY CHECK (_id = 1),
				IS_EQUAL_AREA INTEGER NOT NULL,
				IS_PERCENT INTEGER NOT NULL,
				MAX_COUNT INTEGER NOT NULL,
				MAX_PERCENT REAL NOT NULL,
				HOLLOW_CORE_SIZE REAL NOT NULL,
				SECTOR_SIZE REAL NOT NULL,
				STARTING_ANGLE REAL NOT NULL,
				SECTOR_COUNT INTEGER NOT NULL,
				RELATIVE_SIZE REAL NOT NULL
			)
		`,
	},
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db         *sqlx.DB
	migrations []Migration
}

// NewMigrationManager creates a migration manager for the built-in schema
func NewMigrationManager(db *sqlx.DB) *MigrationManager {
	return &MigrationManager{db: db, migrations: migrations}
}

// InitMigrationsTable creates the migrations tracking table
func (m *MigrationManager) InitMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns a list of applied migration versions
func (m *MigrationManager) GetAppliedMigrations(ctx context.Context) (map[int]bool, error) {
	var versions []int
	if err := m.db.SelectContext(ctx, &versions, "SELECT version FROM migrations ORDER BY version"); err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}

	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// ApplyMigration applies a single migration
func (m *MigrationManager) ApplyMigration(ctx context.Context, migration Migration) error {
	return Transaction(ctx, m.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO migrations (version, name) VALUES (?, ?)", migration.Version, migration.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		zap.S().Infow("applied migration", "version", migration.Version, "name", migration.Name)
		return nil
	})
}

// RunMigrations runs all pending migrations
func (m *MigrationManager) RunMigrations(ctx context.Context) error {
	if err := m.InitMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	pending := append([]Migration(nil), m.migrations...)
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})

	for _, migration := range pending {
		if applied[migration.Version] {
			zap.S().Debugw("skipping applied migration", "version", migration.Version, "name", migration.Name)
			continue
		}
		if err := m.ApplyMigration(ctx, migration); err != nil {
			return err
		}
	}
	return nil
}
