// Package repositories wires repository constructors together with the
// database connection and migrations (via goose).
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/fileporter/fileporter/internal/server/repositories/chunks"
	"github.com/fileporter/fileporter/internal/server/repositories/files"
	"github.com/fileporter/fileporter/migrations"
)

// Manager owns the *sql.DB and hands out repositories bound to it.
type Manager struct {
	db     *sql.DB
	files  files.Repository
	chunks chunks.Repository
}

func (m *Manager) Conn() *sql.DB {
	return m.db
}

func (m *Manager) Files() files.Repository {
	return m.files
}

func (m *Manager) Chunks() chunks.Repository {
	return m.chunks
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the managed connection.
func (m *Manager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

// NewManager opens the database, constructs the repositories and applies
// pending migrations.
func NewManager(ctx context.Context, dsn string) (*Manager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &Manager{
		db:     db,
		files:  files.NewPostgresRepository(db),
		chunks: chunks.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
