package database

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-shopdb/internal/schema"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// VersionTable stores the applied schema version.
const VersionTable = "schema_version"

// schemaMigrations lists the bootstrap steps. The SQL is rendered from the
// declarations in package schema, never written by hand.
func schemaMigrations() []struct{ name, up, down string } {
	return []struct{ name, up, down string }{
		{name: "create_shop_tables", up: schema.CreateSQL(), down: schema.DropSQL()},
	}
}

// Migrate bootstraps the schema using jackc/tern.
//
// Behavior:
//   - Connect using pgx (single connection, not a pool)
//   - Create a tern migrator and append the rendered schema
//   - Run migrations to latest
//   - Log whether it was already up-to-date or migrated
//
// Running it again is a no-op: tern skips applied versions and every
// statement is CREATE TABLE IF NOT EXISTS.
func Migrate(ctx context.Context, logger *zerolog.Logger, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, VersionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	for _, mig := range schemaMigrations() {
		m.AppendMigration(mig.name, mig.up, mig.down)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database schema: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}

// LatestSchemaVersion is the version Migrate brings the database to.
func LatestSchemaVersion() int32 {
	return int32(len(schemaMigrations()))
}

// SchemaVersion reads the applied schema version.
func (db *Database) SchemaVersion(ctx context.Context) (int32, error) {
	var version int32
	err := db.Pool.QueryRow(ctx, "SELECT version FROM "+VersionTable).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
