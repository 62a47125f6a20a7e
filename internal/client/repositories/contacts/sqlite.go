package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/notelinkapp/notelink/internal/client/models"
	"github.com/notelinkapp/notelink/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func upsert(ctx context.Context, db dbx.DBTX, contact *models.Contact) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO contacts (account_id, username, mutual, added_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			username = excluded.username,
			mutual = excluded.mutual,
			added_at = excluded.added_at
	`, contact.AccountID, contact.Username, contact.Mutual, contact.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, contact *models.Contact) error {
	return upsert(ctx, r.db, contact)
}

// ReplaceAll runs in a single transaction so readers observe either the old
// or the new contact set, never a mix.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, contacts []*models.Contact) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
			return fmt.Errorf("failed to clear contacts: %w", err)
		}
		for _, contact := range contacts {
			if err := upsert(ctx, tx, contact); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Delete(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE account_id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, accountID string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT account_id, username, mutual, added_at FROM contacts WHERE account_id = ?`, accountID)

	var item models.Contact
	err := row.Scan(&item.AccountID, &item.Username, &item.Mutual, &item.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &item, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT account_id, username, mutual, added_at FROM contacts ORDER BY added_at, account_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select contacts: %w", err)
	}
	defer rows.Close()

	var result []*models.Contact
	for rows.Next() {
		var item models.Contact
		if err := rows.Scan(&item.AccountID, &item.Username, &item.Mutual, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact row: %w", err)
		}
		result = append(result, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contact rows: %w", err)
	}

	return result, nil
}
