package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/notelinkapp/notelink/internal/common"
	"github.com/notelinkapp/notelink/internal/dbx"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func scanAccount(row *sql.Row) (*Account, error) {
	a := &Account{}
	var phoneHash sql.NullString
	if err := row.Scan(&a.ID, &a.DeviceID, &a.Username, &phoneHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.PhoneHash = phoneHash.String
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *Account) (*Account, error) {
	query :=
		`INSERT INTO accounts (id, device_id, username, phone_hash)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 RETURNING id, device_id, username, COALESCE(phone_hash, ''), created_at
		 `

	created, err := scanAccount(r.db.QueryRowContext(ctx, query,
		account.ID, account.DeviceID, account.Username, account.PhoneHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return created, nil
}

func (r *PostgresRepository) getByColumn(ctx context.Context, column string, value string) (*Account, error) {
	query := fmt.Sprintf(
		`SELECT id, device_id, username, COALESCE(phone_hash, ''), created_at FROM accounts
		 WHERE %s = $1
		 `, column)

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	return r.getByColumn(ctx, "id", id)
}

func (r *PostgresRepository) GetByDeviceID(ctx context.Context, deviceID string) (*Account, error) {
	return r.getByColumn(ctx, "device_id", deviceID)
}

func (r *PostgresRepository) GetByPhoneHashes(ctx context.Context, hashes []string) ([]*Account, error) {
	if len(hashes) == 0 {
		return []*Account{}, nil
	}

	query :=
		`SELECT id, device_id, username, COALESCE(phone_hash, ''), created_at FROM accounts
		 WHERE phone_hash = ANY($1)
		 `

	rows, err := r.db.QueryContext(ctx, query, hashes)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	result := []*Account{}
	for rows.Next() {
		a := &Account{}
		var phoneHash sql.NullString
		if err := rows.Scan(&a.ID, &a.DeviceID, &a.Username, &phoneHash, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		a.PhoneHash = phoneHash.String
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateUsername(ctx context.Context, id string, username string) (*Account, error) {
	query :=
		`UPDATE accounts SET username = $2
		 WHERE id = $1
		 RETURNING id, device_id, username, COALESCE(phone_hash, ''), created_at
		 `

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) BindPhoneHash(ctx context.Context, id string, phoneHash string) (*Account, error) {
	query :=
		`UPDATE accounts SET phone_hash = $2
		 WHERE id = $1
		 RETURNING id, device_id, username, COALESCE(phone_hash, ''), created_at
		 `

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id, phoneHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return account, nil
}
