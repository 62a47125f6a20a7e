package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/notelinkapp/notelink/internal/common"
	"github.com/notelinkapp/notelink/internal/dbx"
)

const shareColumns = `id, inviter_id, target_phone_hash, COALESCE(target_account_id::text, ''), note_id, created_at, resolved_at, accepted_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShare(row rowScanner) (*PendingShare, error) {
	s := &PendingShare{}
	var resolvedAt, acceptedAt sql.NullTime
	err := row.Scan(&s.ID, &s.InviterID, &s.TargetPhoneHash, &s.TargetAccountID,
		&s.NoteID, &s.CreatedAt, &resolvedAt, &acceptedAt)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		s.ResolvedAt = &t
	}
	if acceptedAt.Valid {
		t := acceptedAt.Time
		s.AcceptedAt = &t
	}
	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, share *PendingShare) (*PendingShare, error) {
	query := fmt.Sprintf(
		`INSERT INTO pending_shares (id, inviter_id, target_phone_hash, note_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (target_phone_hash, note_id) DO UPDATE SET created_at = now()
		 RETURNING %s
		 `, shareColumns)

	created, err := scanShare(r.db.QueryRowContext(ctx, query,
		share.ID, share.InviterID, share.TargetPhoneHash, share.NoteID))
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*PendingShare, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM pending_shares
		 WHERE id = $1
		 `, shareColumns)

	share, err := scanShare(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return share, nil
}

func (r *PostgresRepository) ResolveByPhoneHash(ctx context.Context, phoneHash string, targetAccountID string) ([]*PendingShare, error) {
	query := fmt.Sprintf(
		`UPDATE pending_shares
		 SET resolved_at = now(), target_account_id = $2
		 WHERE target_phone_hash = $1 AND resolved_at IS NULL
		 RETURNING %s
		 `, shareColumns)

	rows, err := r.db.QueryContext(ctx, query, phoneHash, targetAccountID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := []*PendingShare{}
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result = append(result, share)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) MarkAccepted(ctx context.Context, id string) (bool, error) {
	query :=
		`UPDATE pending_shares SET accepted_at = now()
		 WHERE id = $1 AND resolved_at IS NOT NULL AND accepted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *PostgresRepository) ListResolvedForTarget(ctx context.Context, accountID string) ([]*PendingShare, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM pending_shares
		 WHERE target_account_id = $1 AND resolved_at IS NOT NULL
		 ORDER BY resolved_at
		 `, shareColumns)

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := []*PendingShare{}
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result = append(result, share)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM pending_shares WHERE resolved_at IS NULL AND created_at < $1`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading rows affected: %w", err)
	}
	return deleted, nil
}
