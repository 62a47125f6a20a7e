package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/notelinkapp/notelink/internal/client/models"
	"github.com/notelinkapp/notelink/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, note *models.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, share_id, shared_by, accepted_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			share_id = excluded.share_id,
			shared_by = excluded.shared_by
	`, note.ID, note.ShareID, note.SharedBy, note.AcceptedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, share_id, shared_by, accepted_at FROM notes WHERE id = ?`, id)

	var item models.Note
	err := row.Scan(&item.ID, &item.ShareID, &item.SharedBy, &item.AcceptedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &item, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, share_id, shared_by, accepted_at FROM notes ORDER BY accepted_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		var item models.Note
		if err := rows.Scan(&item.ID, &item.ShareID, &item.SharedBy, &item.AcceptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		result = append(result, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate note rows: %w", err)
	}

	return result, nil
}
