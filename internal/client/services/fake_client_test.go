package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notelinkapp/notelink/internal/client/client"
	"github.com/notelinkapp/notelink/internal/client/securestore"

	"github.com/notelinkapp/notelink/internal/client/repositories/metadata"

	_ "modernc.org/sqlite"
)

// fakeClient is an in-memory stand-in for the API client. Each method
// returns the canned value unless the corresponding error is set.
type fakeClient struct {
	token string

	authResult *client.AuthResult
	authErr    error
	authCalls  []string // device ids presented

	contacts    []*client.Contact
	contactsErr error

	userName string
	userErr  error

	matched     []*client.User
	matchHashes []string

	addErr    error
	removeErr error

	inviteLink  string
	inviteToken string

	share    *client.Share
	shareErr error

	createdPhone string
	createdHash  string

	shares []*client.Share
}

func (f *fakeClient) SetToken(token string) { f.token = token }

func (f *fakeClient) AuthenticateDevice(ctx context.Context, deviceID, phone string) (*client.AuthResult, error) {
	f.authCalls = append(f.authCalls, deviceID)
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.authResult, nil
}

func (f *fakeClient) GetMe(ctx context.Context) (*client.User, error) { return nil, nil }

func (f *fakeClient) UpdateMe(ctx context.Context, username, phone string) (*client.User, error) {
	return nil, nil
}

func (f *fakeClient) GetUser(ctx context.Context, id string) (*client.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	username := f.userName
	if username == "" {
		username = "user-" + id
	}
	return &client.User{ID: id, Username: username}, nil
}

func (f *fakeClient) MatchContacts(ctx context.Context, phoneHashes []string) ([]*client.User, error) {
	f.matchHashes = phoneHashes
	return f.matched, nil
}

func (f *fakeClient) ListContacts(ctx context.Context) ([]*client.Contact, error) {
	if f.contactsErr != nil {
		return nil, f.contactsErr
	}
	return f.contacts, nil
}

func (f *fakeClient) AddContact(ctx context.Context, userID string) (*client.Contact, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &client.Contact{ID: userID, Username: "user-" + userID}, nil
}

func (f *fakeClient) RemoveContact(ctx context.Context, userID string) error { return f.removeErr }

func (f *fakeClient) GetInviteLink(ctx context.Context) (string, error) { return f.inviteLink, nil }

func (f *fakeClient) AcceptInvite(ctx context.Context, token string) (*client.Contact, error) {
	f.inviteToken = token
	return &client.Contact{ID: "inviter-1"}, nil
}

func (f *fakeClient) CreateShare(ctx context.Context, phone, phoneHash, noteID string) (*client.Share, error) {
	if f.shareErr != nil {
		return nil, f.shareErr
	}
	f.createdPhone = phone
	f.createdHash = phoneHash
	return &client.Share{ID: "share-1", NoteID: noteID, Status: "created"}, nil
}

func (f *fakeClient) ListShares(ctx context.Context) ([]*client.Share, error) { return f.shares, nil }

func (f *fakeClient) AcceptShare(ctx context.Context, shareID string) (*client.Share, error) {
	if f.shareErr != nil {
		return nil, f.shareErr
	}
	if f.share != nil {
		return f.share, nil
	}
	return &client.Share{ID: shareID, NoteID: "note-1", InviterID: "acc-9", Status: "accepted"}, nil
}

var _ client.Client = (*fakeClient)(nil)

func setupCacheDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);
CREATE TABLE contacts (
  account_id TEXT PRIMARY KEY,
  username   TEXT NOT NULL DEFAULT '',
  mutual     INTEGER NOT NULL DEFAULT 0,
  added_at   TIMESTAMP NOT NULL
);
CREATE TABLE notes (
  id          TEXT PRIMARY KEY,
  share_id    TEXT NOT NULL DEFAULT '',
  shared_by   TEXT NOT NULL DEFAULT '',
  accepted_at TIMESTAMP NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func setupSecureStore(t *testing.T, db *sql.DB) *securestore.Store {
	t.Helper()
	store, err := securestore.New(
		metadata.NewSQLiteRepository(db),
		filepath.Join(t.TempDir(), "test.key"),
	)
	require.NoError(t, err)
	return store
}
