// Package client provides the NoteLink CLI's access to the backend REST API
// and the local SQLite cache shared by the application services.
package client

import (
	"context"
	"time"
)

// AuthResult is the outcome of a device authentication round-trip.
type AuthResult struct {
	Token     string
	DeviceID  string
	AccountID string
	IsNewUser bool
}

// User is the server-side view of an account.
type User struct {
	ID          string
	Username    string
	PhoneLinked bool
	CreatedAt   time.Time
}

// Contact is a row of the server-side contact list.
type Contact struct {
	ID       string
	Username string
	Mutual   bool
	AddedAt  time.Time
}

// Share is a pending-share record as the server reports it.
type Share struct {
	ID        string
	NoteID    string
	InviterID string
	Status    string
	CreatedAt time.Time
}

// Client is the remote API surface the services depend on. Implementations
// must translate transport and HTTP status failures into the package's
// sentinel errors so callers can branch with errors.Is.
type Client interface {
	// SetToken installs the bearer token used for authenticated calls.
	SetToken(token string)

	AuthenticateDevice(ctx context.Context, deviceID, phone string) (*AuthResult, error)
	GetMe(ctx context.Context) (*User, error)
	UpdateMe(ctx context.Context, username, phone string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	MatchContacts(ctx context.Context, phoneHashes []string) ([]*User, error)
	ListContacts(ctx context.Context) ([]*Contact, error)
	AddContact(ctx context.Context, userID string) (*Contact, error)
	RemoveContact(ctx context.Context, userID string) error
	GetInviteLink(ctx context.Context) (string, error)
	AcceptInvite(ctx context.Context, token string) (*Contact, error)
	CreateShare(ctx context.Context, phone, phoneHash, noteID string) (*Share, error)
	ListShares(ctx context.Context) ([]*Share, error)
	AcceptShare(ctx context.Context, shareID string) (*Share, error)
}
