package board

import (
	"context"
	"database/sql"
	"embed"
	"path"

	"github.com/goliatone/go-errors"
	"github.com/pressly/goose/v3"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

const migrationsRoot = "data/sql/migrations"

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// MigrationDialect maps a driver name to the goose dialect and migration
// directory used for it.
func MigrationDialect(driver string) (string, error) {
	switch driver {
	case "sqlite", "sqlite3", "sqliteshim":
		return "sqlite3", nil
	case "postgres", "pgx":
		return "postgres", nil
	default:
		return "", errors.New("unsupported database driver: "+driver, errors.CategoryBadInput)
	}
}

// Migrate applies the embedded migrations for driver.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	dialect, err := MigrationDialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to set migration dialect")
	}

	if err := goose.UpContext(ctx, db, path.Join(migrationsRoot, dialect)); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to run migrations")
	}
	return nil
}
