package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/notelinkapp/notelink/internal/common"
	"github.com/notelinkapp/notelink/internal/dbx"
	"github.com/notelinkapp/notelink/internal/logging"
	"github.com/notelinkapp/notelink/internal/server/accounts"
	"github.com/notelinkapp/notelink/internal/server/auth"
	"github.com/notelinkapp/notelink/internal/server/config"
)

// inviteLinkBase is the public deep-link prefix; the path segment is the
// invite token.
const inviteLinkBase = "https://notelink.app/i/"

// Service owns the contact graph: edge mutations with mutuality recomputed
// at write time, directory matching by phone hash, and invite links.
type Service struct {
	db        *sql.DB
	repos     RepositoryFactory
	accounts  accounts.Repository
	logger    logging.Logger
	jwtSecret []byte
}

func NewService(db *sql.DB, repos RepositoryFactory, accountRepo accounts.Repository, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		repos:     repos,
		accounts:  accountRepo,
		logger:    logger,
		jwtSecret: []byte(cfg.SecretKey),
	}
}

// Add creates the owner→contact edge. Idempotent: re-adding an existing edge
// is a no-op success. The mutual flag is recomputed from the reciprocal edge
// inside the same transaction; a caller-supplied hint is never trusted.
func (s *Service) Add(ctx context.Context, ownerID string, contactID string) (*Contact, error) {
	if ownerID == contactID {
		return nil, common.ErrConflict
	}

	contact, err := s.accounts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error looking up contact: %w", err)
	}

	var mutual bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos(tx)

		if _, err := repo.Upsert(ctx, ownerID, contactID); err != nil {
			return err
		}

		reciprocal, err := repo.Exists(ctx, contactID, ownerID)
		if err != nil {
			return err
		}
		mutual = reciprocal

		if err := repo.SetMutual(ctx, ownerID, contactID, reciprocal); err != nil {
			return err
		}
		if reciprocal {
			return repo.SetMutual(ctx, contactID, ownerID, true)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Contact{AccountID: contact.ID, Username: contact.Username, Mutual: mutual}, nil
}

// Remove deletes the owner→contact edge and downgrades the reciprocal edge
// to non-mutual in the same transaction.
func (s *Service) Remove(ctx context.Context, ownerID string, contactID string) error {
	var deleted bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos(tx)

		var err error
		deleted, err = repo.Delete(ctx, ownerID, contactID)
		if err != nil {
			return err
		}
		if !deleted {
			return nil
		}
		return repo.SetMutual(ctx, contactID, ownerID, false)
	})
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrNotFound
	}
	return nil
}

// List returns the owner's directory view of the contact graph.
func (s *Service) List(ctx context.Context, ownerID string) ([]*Contact, error) {
	return s.repos(s.db).ListByOwner(ctx, ownerID)
}

// MatchByPhoneHashes maps phone hashes to registered accounts. Unmatched
// hashes are silently dropped.
func (s *Service) MatchByPhoneHashes(ctx context.Context, hashes []string) ([]*accounts.Account, error) {
	return s.accounts.GetByPhoneHashes(ctx, hashes)
}

// InviteLink returns the opaque link attributing future registrations to
// the given account. Stateless: nothing is persisted.
func (s *Service) InviteLink(accountID string) (string, error) {
	token, err := auth.GenerateInviteToken(accountID, s.jwtSecret)
	if err != nil {
		return "", common.ErrInternal
	}
	return inviteLinkBase + token, nil
}

// AcceptInvite decodes an invite token and connects the accepting account
// with the inviter in both directions.
func (s *Service) AcceptInvite(ctx context.Context, accountID string, token string) (*Contact, error) {
	inviterID, err := auth.ParseInviteToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if inviterID == accountID {
		return nil, common.ErrConflict
	}

	if _, err := s.Add(ctx, inviterID, accountID); err != nil {
		return nil, err
	}
	return s.Add(ctx, accountID, inviterID)
}

// GetUser is the server-authoritative point lookup behind the client's
// cache fill-through.
func (s *Service) GetUser(ctx context.Context, id string) (*accounts.Account, error) {
	return s.accounts.GetByID(ctx, id)
}
