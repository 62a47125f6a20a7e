package shares

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelinkapp/notelink/internal/common"
	"github.com/notelinkapp/notelink/internal/dbx"
	"github.com/notelinkapp/notelink/internal/logging"
	"github.com/notelinkapp/notelink/internal/phonehash"
	"github.com/notelinkapp/notelink/internal/server/accounts"
	"github.com/notelinkapp/notelink/internal/server/config"
	"github.com/notelinkapp/notelink/internal/server/contacts"
)

// fakeLedger is an in-memory share ledger honoring the compare-and-set
// semantics of the Postgres schema.
type fakeLedger struct {
	shares map[string]*PendingShare // by id
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{shares: map[string]*PendingShare{}}
}

func (f *fakeLedger) Upsert(ctx context.Context, share *PendingShare) (*PendingShare, error) {
	for _, s := range f.shares {
		if s.TargetPhoneHash == share.TargetPhoneHash && s.NoteID == share.NoteID {
			s.CreatedAt = time.Now()
			out := *s
			return &out, nil
		}
	}
	stored := *share
	stored.CreatedAt = time.Now()
	f.shares[share.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeLedger) GetByID(ctx context.Context, id string) (*PendingShare, error) {
	s, ok := f.shares[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (f *fakeLedger) ResolveByPhoneHash(ctx context.Context, phoneHash string, targetAccountID string) ([]*PendingShare, error) {
	result := []*PendingShare{}
	for _, s := range f.shares {
		if s.TargetPhoneHash == phoneHash && s.ResolvedAt == nil {
			now := time.Now()
			s.ResolvedAt = &now
			s.TargetAccountID = targetAccountID
			out := *s
			result = append(result, &out)
		}
	}
	return result, nil
}

func (f *fakeLedger) MarkAccepted(ctx context.Context, id string) (bool, error) {
	s, ok := f.shares[id]
	if !ok || s.ResolvedAt == nil || s.AcceptedAt != nil {
		return false, nil
	}
	now := time.Now()
	s.AcceptedAt = &now
	return true, nil
}

func (f *fakeLedger) ListResolvedForTarget(ctx context.Context, accountID string) ([]*PendingShare, error) {
	result := []*PendingShare{}
	for _, s := range f.shares {
		if s.TargetAccountID == accountID && s.ResolvedAt != nil {
			out := *s
			result = append(result, &out)
		}
	}
	return result, nil
}

func (f *fakeLedger) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for id, s := range f.shares {
		if s.ResolvedAt == nil && s.CreatedAt.Before(cutoff) {
			delete(f.shares, id)
			deleted++
		}
	}
	return deleted, nil
}

type edgeKey struct{ owner, contact string }

type fakeEdges struct {
	edges map[edgeKey]bool // value = mutual
}

func (f *fakeEdges) Upsert(ctx context.Context, ownerID, contactID string) (bool, error) {
	if _, ok := f.edges[edgeKey{ownerID, contactID}]; ok {
		return false, nil
	}
	f.edges[edgeKey{ownerID, contactID}] = false
	return true, nil
}

func (f *fakeEdges) Exists(ctx context.Context, ownerID, contactID string) (bool, error) {
	_, ok := f.edges[edgeKey{ownerID, contactID}]
	return ok, nil
}

func (f *fakeEdges) SetMutual(ctx context.Context, ownerID, contactID string, mutual bool) error {
	if _, ok := f.edges[edgeKey{ownerID, contactID}]; ok {
		f.edges[edgeKey{ownerID, contactID}] = mutual
	}
	return nil
}

func (f *fakeEdges) Delete(ctx context.Context, ownerID, contactID string) (bool, error) {
	delete(f.edges, edgeKey{ownerID, contactID})
	return true, nil
}

func (f *fakeEdges) ListByOwner(ctx context.Context, ownerID string) ([]*contacts.Contact, error) {
	return nil, nil
}

type fakeAccounts struct {
	byID    map[string]*accounts.Account
	byPhone map[string]string
}

func (f *fakeAccounts) Create(ctx context.Context, a *accounts.Account) (*accounts.Account, error) {
	return a, nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) GetByDeviceID(ctx context.Context, deviceID string) (*accounts.Account, error) {
	return nil, common.ErrNotFound
}

func (f *fakeAccounts) GetByPhoneHashes(ctx context.Context, hashes []string) ([]*accounts.Account, error) {
	result := []*accounts.Account{}
	for _, h := range hashes {
		if id, ok := f.byPhone[h]; ok {
			result = append(result, f.byID[id])
		}
	}
	return result, nil
}

func (f *fakeAccounts) UpdateUsername(ctx context.Context, id, username string) (*accounts.Account, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeAccounts) BindPhoneHash(ctx context.Context, id, phoneHash string) (*accounts.Account, error) {
	return f.GetByID(ctx, id)
}

type fixture struct {
	svc    *Service
	ledger *fakeLedger
	edges  *fakeEdges
	accs   *fakeAccounts
	mock   sqlmock.Sqlmock
	hasher phonehash.Strategy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ledger := newFakeLedger()
	edges := &fakeEdges{edges: map[edgeKey]bool{}}
	accs := &fakeAccounts{byID: map[string]*accounts.Account{}, byPhone: map[string]string{}}

	hasher := phonehash.NewHMACStrategy([]byte("salt"))
	cfg := &config.Config{}
	cfg.LoadDefaults()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc := NewService(
		db,
		func(dbx.DBTX) Repository { return ledger },
		func(dbx.DBTX) contacts.Repository { return edges },
		accs,
		hasher,
		logger,
		cfg,
	)

	return &fixture{svc: svc, ledger: ledger, edges: edges, accs: accs, mock: mock, hasher: hasher}
}

func (f *fixture) addAccount(id, phone string) *accounts.Account {
	a := &accounts.Account{ID: id, DeviceID: id + "-dev"}
	if phone != "" {
		hash, _ := f.hasher.Hash(phone)
		a.PhoneHash = hash
		f.accs.byPhone[hash] = id
	}
	f.accs.byID[id] = a
	return a
}

func (f *fixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func TestCreate_PendingForUnregisteredPhone(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "+15550000001")

	f.expectTx()
	share, err := f.svc.Create(context.Background(), "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)

	assert.Equal(t, StatusCreated, share.Status())
	assert.Equal(t, "N123", share.NoteID)
	assert.Empty(t, share.TargetAccountID)
}

func TestCreate_DeduplicatesOnTargetAndNote(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "")
	ctx := context.Background()

	f.expectTx()
	first, err := f.svc.Create(ctx, "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)

	f.expectTx()
	second, err := f.svc.Create(ctx, "inviter", "+1 (555) 123-45-67", "", "N123")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.ledger.shares, 1)
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))
}

func TestCreate_RegisteredTargetResolvesImmediately(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "")
	f.addAccount("target", "+15551234567")

	f.expectTx()
	share, err := f.svc.Create(context.Background(), "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)

	assert.Equal(t, StatusResolved, share.Status())
	assert.Equal(t, "target", share.TargetAccountID)
	_, edge := f.edges.edges[edgeKey{"inviter", "target"}]
	assert.True(t, edge)
}

func TestCreate_SelfShareRejected(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "+15551234567")

	_, err := f.svc.Create(context.Background(), "inviter", "+15551234567", "", "N123")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestResolve_ExactlyOncePerShare(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "")
	ctx := context.Background()

	f.expectTx()
	share, err := f.svc.Create(ctx, "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)

	target := f.addAccount("target", "+15551234567")

	f.expectTx()
	n, err := f.svc.Resolve(ctx, target.ID, target.PhoneHash)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// a second invocation for the same account is a no-op
	f.expectTx()
	n, err = f.svc.Resolve(ctx, target.ID, target.PhoneHash)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := f.ledger.GetByID(ctx, share.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, got.Status())
	assert.Equal(t, "target", got.TargetAccountID)
}

func TestResolve_MaterializesInviterEdge(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "")
	ctx := context.Background()

	f.expectTx()
	_, err := f.svc.Create(ctx, "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)

	target := f.addAccount("target", "+15551234567")

	f.expectTx()
	_, err = f.svc.Resolve(ctx, target.ID, target.PhoneHash)
	require.NoError(t, err)

	_, ok := f.edges.edges[edgeKey{"inviter", "target"}]
	assert.True(t, ok)
}

func TestAccept_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "")
	ctx := context.Background()

	f.expectTx()
	share, err := f.svc.Create(ctx, "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)

	target := f.addAccount("target", "+15551234567")
	f.expectTx()
	_, err = f.svc.Resolve(ctx, target.ID, target.PhoneHash)
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, "target", share.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status())

	// idempotent
	again, err := f.svc.Accept(ctx, "target", share.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, again.Status())
}

func TestAccept_UnresolvedShare(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "")
	ctx := context.Background()

	f.expectTx()
	share, err := f.svc.Create(ctx, "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)

	// still pending; nobody may accept it, including the inviter
	_, err = f.svc.Accept(ctx, "inviter", share.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAccept_WrongTarget(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "")
	ctx := context.Background()

	f.expectTx()
	share, err := f.svc.Create(ctx, "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)

	target := f.addAccount("target", "+15551234567")
	f.expectTx()
	_, err = f.svc.Resolve(ctx, target.ID, target.PhoneHash)
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, "somebody-else", share.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAccept_UnknownShare(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Accept(context.Background(), "a", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListIncoming(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "")
	ctx := context.Background()

	f.expectTx()
	_, err := f.svc.Create(ctx, "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)
	f.expectTx()
	_, err = f.svc.Create(ctx, "inviter", "+15551234567", "", "N456")
	require.NoError(t, err)

	target := f.addAccount("target", "+15551234567")
	f.expectTx()
	n, err := f.svc.Resolve(ctx, target.ID, target.PhoneHash)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	incoming, err := f.svc.ListIncoming(ctx, "target")
	require.NoError(t, err)
	assert.Len(t, incoming, 2)
}

func TestSweepExpired(t *testing.T) {
	f := newFixture(t)
	f.addAccount("inviter", "")
	ctx := context.Background()

	f.expectTx()
	share, err := f.svc.Create(ctx, "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)

	// age the row past the TTL
	f.ledger.shares[share.ID].CreatedAt = time.Now().Add(-31 * 24 * time.Hour)

	deleted, err := f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = f.ledger.GetByID(ctx, share.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSweepExpired_ZeroTTLDisabled(t *testing.T) {
	f := newFixture(t)
	f.svc.ttl = 0
	f.addAccount("inviter", "")
	ctx := context.Background()

	f.expectTx()
	share, err := f.svc.Create(ctx, "inviter", "+15551234567", "", "N123")
	require.NoError(t, err)
	f.ledger.shares[share.ID].CreatedAt = time.Now().Add(-10 * 365 * 24 * time.Hour)

	deleted, err := f.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
