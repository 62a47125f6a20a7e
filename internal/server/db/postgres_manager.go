// Package db wires the Postgres connection, goose migrations, and the
// repository constructors into one manager the app assembles once.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/notelinkapp/notelink/internal/dbx"
	"github.com/notelinkapp/notelink/internal/server/accounts"
	"github.com/notelinkapp/notelink/internal/server/contacts"
	"github.com/notelinkapp/notelink/internal/server/migrations"
	"github.com/notelinkapp/notelink/internal/server/shares"
)

type PostgresRepositoryManager struct {
	db *sql.DB
}

func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{db: db}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

func (m *PostgresRepositoryManager) Accounts() accounts.Repository {
	return accounts.NewPostgresRepository(m.db)
}

// ContactFactory binds a contact-edge repository to an arbitrary handle so
// services can run edge mutations inside their own transactions.
func (m *PostgresRepositoryManager) ContactFactory() contacts.RepositoryFactory {
	return func(db dbx.DBTX) contacts.Repository {
		return contacts.NewPostgresRepository(db)
	}
}

func (m *PostgresRepositoryManager) ShareFactory() shares.RepositoryFactory {
	return func(db dbx.DBTX) shares.Repository {
		return shares.NewPostgresRepository(db)
	}
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, m.db, ".")
}
