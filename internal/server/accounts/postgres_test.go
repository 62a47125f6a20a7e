package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/notelinkapp/notelink/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func accountRows(id, deviceID, username, phoneHash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "device_id", "username", "phone_hash", "created_at"}).
		AddRow(id, deviceID, username, phoneHash, time.Now())
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(id,\s*device_id,\s*username,\s*phone_hash\).*RETURNING\s+id`

	mock.ExpectQuery(q).
		WithArgs("a1", "d1", "", "").
		WillReturnRows(accountRows("a1", "d1", "", ""))

	got, err := repo.Create(context.Background(), &Account{ID: "a1", DeviceID: "d1"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "a1" || got.DeviceID != "d1" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestCreate_UniqueViolationMapsToConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_device_id_key"})

	_, err := repo.Create(context.Background(), &Account{ID: "a1", DeviceID: "d1"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestGetByDeviceID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM accounts\s+WHERE device_id = \$1`).
		WithArgs("d-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByDeviceID(context.Background(), "d-missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByPhoneHashes_Empty(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	got, err := repo.GetByPhoneHashes(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetByPhoneHashes error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

func TestBindPhoneHash_Conflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE accounts SET phone_hash`).
		WithArgs("a1", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.BindPhoneHash(context.Background(), "a1", "hash")
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
