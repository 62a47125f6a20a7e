package contacts

import (
	"context"

	"github.com/notelinkapp/notelink/internal/dbx"
)

type Repository interface {
	// Upsert inserts the edge if absent. Reports whether a row was inserted.
	Upsert(ctx context.Context, ownerID string, contactID string) (bool, error)
	Exists(ctx context.Context, ownerID string, contactID string) (bool, error)
	SetMutual(ctx context.Context, ownerID string, contactID string, mutual bool) error
	// Delete removes the edge. Reports whether a row was deleted.
	Delete(ctx context.Context, ownerID string, contactID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Contact, error)
}

// RepositoryFactory binds a Repository to a DB handle, letting the service
// run multi-statement graph mutations inside one transaction.
type RepositoryFactory func(db dbx.DBTX) Repository
