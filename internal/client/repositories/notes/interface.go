package notes

import (
	"context"

	"github.com/notelinkapp/notelink/internal/client/models"
)

// Repository stores shared notes the user accepted on this device.
// Upsert is keyed by note id, so accepting the same share twice leaves a
// single record.
type Repository interface {
	Upsert(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context) ([]*models.Note, error)
}
