package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/vncsmyrnk/auth-service/internal/adapters/repository/postgres/migrations"
)

func init() {
	goose.SetBaseFS(migrations.FS)
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	return runGoose(ctx, db, "up")
}

// RunMigrationCommand executes a goose command (up, down, status, version,
// reset, redo) against the embedded migrations.
func RunMigrationCommand(ctx context.Context, db *sql.DB, command string) error {
	switch command {
	case "up", "down", "status", "version", "reset", "redo":
	default:
		return fmt.Errorf("unsupported migration command %q", command)
	}
	return runGoose(ctx, db, command)
}

func runGoose(ctx context.Context, db *sql.DB, command string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("failed to run migration %s: %w", command, err)
	}
	return nil
}
