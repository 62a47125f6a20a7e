package contacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/notelinkapp/notelink/internal/common"
	"github.com/notelinkapp/notelink/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, ownerID string, contactID string) (bool, error) {
	query :=
		`INSERT INTO contact_edges (owner_id, contact_id)
		 VALUES ($1, $2)
		 ON CONFLICT (owner_id, contact_id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, ownerID, contactID)
	if err != nil {
		var pgErr *pgconn.PgError
		// check_violation: the owner_id <> contact_id constraint
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return false, common.ErrConflict
		}
		return false, fmt.Errorf("error performing sql request: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return inserted > 0, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, ownerID string, contactID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM contact_edges WHERE owner_id = $1 AND contact_id = $2
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID, contactID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) SetMutual(ctx context.Context, ownerID string, contactID string, mutual bool) error {
	query :=
		`UPDATE contact_edges SET mutual = $3
		 WHERE owner_id = $1 AND contact_id = $2
		 `

	if _, err := r.db.ExecContext(ctx, query, ownerID, contactID, mutual); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID string, contactID string) (bool, error) {
	query := `DELETE FROM contact_edges WHERE owner_id = $1 AND contact_id = $2`

	res, err := r.db.ExecContext(ctx, query, ownerID, contactID)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return deleted > 0, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*Contact, error) {
	query :=
		`SELECT e.contact_id, a.username, e.mutual, e.created_at
		 FROM contact_edges e
		 JOIN accounts a ON a.id = e.contact_id
		 WHERE e.owner_id = $1
		 ORDER BY e.created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := []*Contact{}
	for rows.Next() {
		c := &Contact{}
		if err := rows.Scan(&c.AccountID, &c.Username, &c.Mutual, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}
