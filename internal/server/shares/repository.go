package shares

import (
	"context"
	"time"

	"github.com/notelinkapp/notelink/internal/dbx"
)

type Repository interface {
	// Upsert records a share. Re-sharing the same note to the same phone
	// hash refreshes created_at instead of creating a duplicate row.
	Upsert(ctx context.Context, share *PendingShare) (*PendingShare, error)
	GetByID(ctx context.Context, id string) (*PendingShare, error)
	// ResolveByPhoneHash atomically transitions every unresolved share
	// addressed to phoneHash to resolved, binding the target account.
	// The compare-and-set on resolved_at IS NULL makes resolution
	// exactly-once per share. Returns the shares transitioned by THIS call.
	ResolveByPhoneHash(ctx context.Context, phoneHash string, targetAccountID string) ([]*PendingShare, error)
	// MarkAccepted transitions a resolved share to accepted. The
	// compare-and-set on accepted_at IS NULL reports false when the share
	// was already accepted.
	MarkAccepted(ctx context.Context, id string) (bool, error)
	ListResolvedForTarget(ctx context.Context, accountID string) ([]*PendingShare, error)
	// DeleteExpired removes unresolved shares created before the cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// RepositoryFactory binds a Repository to a DB handle so resolution can run
// inside one transaction together with contact-edge materialization.
type RepositoryFactory func(db dbx.DBTX) Repository
