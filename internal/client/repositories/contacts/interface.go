package contacts

import (
	"context"

	"github.com/notelinkapp/notelink/internal/client/models"
)

// Repository describes the local contact cache. The cache mirrors the
// server-side contact list; ReplaceAll swaps the whole set atomically so a
// refresh never leaves a half-updated view behind.
type Repository interface {
	// Upsert inserts a contact or updates it by account id.
	Upsert(ctx context.Context, contact *models.Contact) error

	// ReplaceAll atomically replaces the cached set with the given one.
	ReplaceAll(ctx context.Context, contacts []*models.Contact) error

	// Delete removes a contact by account id. Deleting an absent contact
	// is not an error.
	Delete(ctx context.Context, accountID string) error

	// List returns all cached contacts ordered by when they were added.
	List(ctx context.Context) ([]*models.Contact, error)

	// Get returns a cached contact, or nil when absent.
	Get(ctx context.Context, accountID string) (*models.Contact, error)
}
