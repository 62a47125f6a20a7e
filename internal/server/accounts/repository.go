package accounts

import (
	"context"
)

type Repository interface {
	// Create inserts a new account. Returns common.ErrConflict when the
	// device id or phone hash is already bound.
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByDeviceID(ctx context.Context, deviceID string) (*Account, error)
	// GetByPhoneHashes returns the accounts bound to any of the given hashes.
	// Unmatched hashes are simply absent from the result.
	GetByPhoneHashes(ctx context.Context, hashes []string) ([]*Account, error)
	// UpdateUsername overwrites the display name.
	UpdateUsername(ctx context.Context, id string, username string) (*Account, error)
	// BindPhoneHash sets the phone hash. Returns common.ErrConflict when the
	// hash is already bound to a different account.
	BindPhoneHash(ctx context.Context, id string, phoneHash string) (*Account, error)
}
