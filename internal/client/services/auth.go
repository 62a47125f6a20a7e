// Package services contains application services for the NoteLink client.
// This file defines the auth service: device authentication against the
// server and housekeeping of the locally persisted session.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/notelinkapp/notelink/internal/client/client"
	"github.com/notelinkapp/notelink/internal/client/securestore"
)

const (
	keyDeviceID  = "device_id"
	keyToken     = "token"
	keyAccountID = "account_id"
)

// AuthService manages the device identity and session token.
//
// Contract:
//   - Authenticate: present the stored device id (if any) to the server,
//     then persist the returned credentials. A failed round-trip must leave
//     the stored identity untouched.
//   - RestoreSession: install the stored token on the API client at startup.
//   - Logout: drop the session token but keep the device identity, so the
//     next login maps back to the same account.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Authenticate(ctx context.Context, phone string) (*client.AuthResult, error)
	RestoreSession(ctx context.Context) error
	IsLoggedIn(ctx context.Context) bool
	AccountID(ctx context.Context) string
	Logout(ctx context.Context) error

	SessionInvalidator
}

// SessionInvalidator drops the locally stored session after the server has
// rejected its token. Services call it on every unauthorized response so
// IsLoggedIn reflects reality and the next command asks for a fresh login.
type SessionInvalidator interface {
	InvalidateSession(ctx context.Context) error
}

// dropSessionOnAuthError clears the stored session when err is an
// unauthorized server response. Other errors pass through untouched.
func dropSessionOnAuthError(ctx context.Context, sessions SessionInvalidator, err error) {
	if sessions != nil && errors.Is(err, client.ErrUnauthorized) {
		_ = sessions.InvalidateSession(ctx)
	}
}

type authService struct {
	client client.Client
	store  *securestore.Store
}

// NewAuthService constructs an AuthService bound to the given API client and
// credential store.
func NewAuthService(apiClient client.Client, store *securestore.Store) AuthService {
	return &authService{client: apiClient, store: store}
}

// Authenticate performs one device-auth round-trip. The device id stored on
// this install is presented to the server; first-time installs present none
// and adopt the id the server assigns. Credentials are persisted only after
// the server call succeeds.
func (a *authService) Authenticate(ctx context.Context, phone string) (*client.AuthResult, error) {
	deviceID, err := a.store.Get(ctx, keyDeviceID)
	if err != nil {
		return nil, fmt.Errorf("device id read error: %w", err)
	}

	result, err := a.client.AuthenticateDevice(ctx, string(deviceID), phone)
	if err != nil {
		return nil, fmt.Errorf("authentication error: %w", err)
	}

	if err := a.store.Set(ctx, keyDeviceID, []byte(result.DeviceID)); err != nil {
		return nil, fmt.Errorf("device id saving error: %w", err)
	}
	if err := a.store.Set(ctx, keyToken, []byte(result.Token)); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}
	if err := a.store.Set(ctx, keyAccountID, []byte(result.AccountID)); err != nil {
		return nil, fmt.Errorf("account id saving error: %w", err)
	}

	a.client.SetToken(result.Token)
	return result, nil
}

// RestoreSession installs the stored token on the API client, if present.
func (a *authService) RestoreSession(ctx context.Context) error {
	token, err := a.store.Get(ctx, keyToken)
	if err != nil {
		return err
	}
	if len(token) > 0 {
		a.client.SetToken(string(token))
	}
	return nil
}

// IsLoggedIn reports whether a session token is stored locally. The token
// may still be expired server-side; calls will surface ErrUnauthorized then.
func (a *authService) IsLoggedIn(ctx context.Context) bool {
	token, err := a.store.Get(ctx, keyToken)
	return err == nil && len(token) > 0
}

// AccountID returns the locally stored account id, or "" when logged out.
func (a *authService) AccountID(ctx context.Context) string {
	id, err := a.store.Get(ctx, keyAccountID)
	if err != nil {
		return ""
	}
	return string(id)
}

// Logout clears the session token. The device id survives so logging back
// in resolves to the same account.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Delete(ctx, keyToken); err != nil {
		return err
	}
	a.client.SetToken("")
	return nil
}

// InvalidateSession drops the stored token after the server rejected it.
// Same effect as Logout: the device identity stays for the next login.
func (a *authService) InvalidateSession(ctx context.Context) error {
	return a.Logout(ctx)
}
