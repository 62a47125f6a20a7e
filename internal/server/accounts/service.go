package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/notelinkapp/notelink/internal/common"
	"github.com/notelinkapp/notelink/internal/logging"
	"github.com/notelinkapp/notelink/internal/phonehash"
	"github.com/notelinkapp/notelink/internal/server/auth"
	"github.com/notelinkapp/notelink/internal/server/config"
)

// AuthResult is the outcome of a device authentication.
type AuthResult struct {
	Token     string
	DeviceID  string
	AccountID string
	IsNewUser bool
}

// ShareResolver converts pending shares addressed to a phone hash into real
// shares for the given account. Implemented by the shares service.
type ShareResolver interface {
	Resolve(ctx context.Context, accountID string, phoneHash string) (int, error)
}

// Service is the device auth service: it decides "new vs returning device",
// creates accounts, and issues access tokens. After every successful
// authentication with a known phone hash it kicks pending-share resolution.
type Service struct {
	repo          Repository
	resolver      ShareResolver
	hasher        phonehash.Strategy
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewService(repo Repository, resolver ShareResolver, hasher phonehash.Strategy, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:          repo,
		resolver:      resolver,
		hasher:        hasher,
		logger:        logger,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.AccessTokenValidityDuration,
	}
}

// Authenticate implements the device auth contract: an absent or unknown
// device id creates a new account, a known one reissues a token. Concurrent
// first authentications from the same device are serialized by the unique
// constraint on device_id; the losing writer retries as a lookup.
func (s *Service) Authenticate(ctx context.Context, deviceID string, phone string) (*AuthResult, error) {
	account, isNew, err := s.findOrCreate(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if phone != "" {
		account = s.bindPhone(ctx, account, phone)
	}

	if account.PhoneHash != "" {
		// A failed resolution must not fail the authentication; it is
		// retried on the next successful authenticate for this account.
		if n, err := s.resolver.Resolve(ctx, account.ID, account.PhoneHash); err != nil {
			s.logger.Warn(ctx, "pending share resolution failed", "account_id", account.ID, "error", err.Error())
		} else if n > 0 {
			s.logger.Info(ctx, "pending shares resolved", "account_id", account.ID, "count", n)
		}
	}

	token, err := auth.GenerateToken(account.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &AuthResult{
		Token:     token,
		DeviceID:  account.DeviceID,
		AccountID: account.ID,
		IsNewUser: isNew,
	}, nil
}

func (s *Service) findOrCreate(ctx context.Context, deviceID string) (*Account, bool, error) {
	if deviceID != "" {
		account, err := s.repo.GetByDeviceID(ctx, deviceID)
		if err == nil {
			return account, false, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, false, fmt.Errorf("error looking up device: %w", err)
		}
		// Unknown device id: keep it as the durable handle only if it is a
		// well-formed UUID, otherwise issue a fresh one.
		if _, parseErr := uuid.Parse(deviceID); parseErr != nil {
			deviceID = ""
		}
	}

	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	account, err := s.repo.Create(ctx, &Account{ID: uuid.NewString(), DeviceID: deviceID})
	if err == nil {
		return account, true, nil
	}
	if !errors.Is(err, common.ErrConflict) {
		return nil, false, fmt.Errorf("error creating account: %w", err)
	}

	// Lost a concurrent creation race for the same device id.
	account, err = s.repo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, false, fmt.Errorf("error looking up device after conflict: %w", err)
	}
	return account, false, nil
}

// bindPhone hashes the supplied phone number and stores it on the account.
// Binding failures are logged and ignored: the authentication stays valid
// and the phone can be bound again via the profile endpoint.
func (s *Service) bindPhone(ctx context.Context, account *Account, phone string) *Account {
	hash, err := s.hasher.Hash(phone)
	if err != nil {
		s.logger.Warn(ctx, "invalid phone supplied on authenticate", "account_id", account.ID)
		return account
	}
	if account.PhoneHash == hash {
		return account
	}

	updated, err := s.repo.BindPhoneHash(ctx, account.ID, hash)
	if err != nil {
		s.logger.Warn(ctx, "phone hash binding failed", "account_id", account.ID, "error", err.Error())
		return account
	}
	return updated
}

// Me returns the authenticated account.
func (s *Service) Me(ctx context.Context, accountID string) (*Account, error) {
	return s.repo.GetByID(ctx, accountID)
}

// UpdateProfile updates the display name and/or phone binding. Empty
// arguments leave the corresponding field untouched.
func (s *Service) UpdateProfile(ctx context.Context, accountID string, username string, phone string) (*Account, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if username != "" && username != account.Username {
		account, err = s.repo.UpdateUsername(ctx, accountID, username)
		if err != nil {
			return nil, err
		}
	}

	if phone != "" {
		hash, err := s.hasher.Hash(phone)
		if err != nil {
			return nil, fmt.Errorf("invalid phone: %w", err)
		}
		if hash != account.PhoneHash {
			account, err = s.repo.BindPhoneHash(ctx, accountID, hash)
			if err != nil {
				return nil, err
			}
			// The phone just became known; shares addressed to it can now
			// be resolved without waiting for the next authentication.
			if n, rerr := s.resolver.Resolve(ctx, accountID, hash); rerr != nil {
				s.logger.Warn(ctx, "pending share resolution failed", "account_id", accountID, "error", rerr.Error())
			} else if n > 0 {
				s.logger.Info(ctx, "pending shares resolved", "account_id", accountID, "count", n)
			}
		}
	}

	return account, nil
}
