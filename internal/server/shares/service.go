package shares

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/notelinkapp/notelink/internal/common"
	"github.com/notelinkapp/notelink/internal/dbx"
	"github.com/notelinkapp/notelink/internal/logging"
	"github.com/notelinkapp/notelink/internal/phonehash"
	"github.com/notelinkapp/notelink/internal/server/accounts"
	"github.com/notelinkapp/notelink/internal/server/config"
	"github.com/notelinkapp/notelink/internal/server/contacts"
)

// Service is the invite & share resolver over the pending share ledger.
//
// Resolution and its deliveries (binding the target account, materializing
// the inviter's contact edge) run in one transaction: if delivery fails the
// compare-and-set on resolved_at rolls back too, so the share is picked up
// again on the target's next authentication.
type Service struct {
	db       *sql.DB
	repos    RepositoryFactory
	edges    contacts.RepositoryFactory
	accounts accounts.Repository
	hasher   phonehash.Strategy
	logger   logging.Logger
	ttl      time.Duration
}

func NewService(db *sql.DB, repos RepositoryFactory, edges contacts.RepositoryFactory, accountRepo accounts.Repository, hasher phonehash.Strategy, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		db:       db,
		repos:    repos,
		edges:    edges,
		accounts: accountRepo,
		hasher:   hasher,
		logger:   logger,
		ttl:      cfg.PendingShareTTL,
	}
}

// Create records a share of noteID addressed to a phone number. The target
// may be given as a raw phone (hashed here, e.g. when sharing from the
// device's address book UI) or as a pre-computed hash. If the number is
// already bound to an account the share is resolved in the same call.
func (s *Service) Create(ctx context.Context, inviterID string, phone string, phoneHash string, noteID string) (*PendingShare, error) {
	if noteID == "" {
		return nil, fmt.Errorf("missing note id: %w", common.ErrInternal)
	}

	if phoneHash == "" {
		var err error
		phoneHash, err = s.hasher.Hash(phone)
		if err != nil {
			return nil, fmt.Errorf("invalid share target: %w", err)
		}
	}

	inviter, err := s.accounts.GetByID(ctx, inviterID)
	if err != nil {
		return nil, fmt.Errorf("error looking up inviter: %w", err)
	}
	if inviter.PhoneHash != "" && inviter.PhoneHash == phoneHash {
		return nil, common.ErrConflict
	}

	matches, err := s.accounts.GetByPhoneHashes(ctx, []string{phoneHash})
	if err != nil {
		return nil, fmt.Errorf("error matching share target: %w", err)
	}

	var share *PendingShare
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos(tx)

		share, err = repo.Upsert(ctx, &PendingShare{
			ID:              uuid.NewString(),
			InviterID:       inviterID,
			TargetPhoneHash: phoneHash,
			NoteID:          noteID,
		})
		if err != nil {
			return err
		}

		// Target already registered: resolve within the same transaction.
		if len(matches) > 0 && share.ResolvedAt == nil {
			resolved, err := s.resolveInTx(ctx, tx, matches[0].ID, phoneHash)
			if err != nil {
				return err
			}
			for _, r := range resolved {
				if r.ID == share.ID {
					share = r
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return share, nil
}

// Resolve transitions every unresolved share addressed to phoneHash into a
// deliverable share for accountID. Invoked after every successful device
// authentication with a known phone hash. Exactly-once per share; safe to
// call concurrently with new shares being created for the same hash.
func (s *Service) Resolve(ctx context.Context, accountID string, phoneHash string) (int, error) {
	var count int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		resolved, err := s.resolveInTx(ctx, tx, accountID, phoneHash)
		if err != nil {
			return err
		}
		count = len(resolved)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// resolveInTx performs the compare-and-set and delivers each resolved share:
// the inviter gains a contact edge to the target, with mutuality recomputed.
func (s *Service) resolveInTx(ctx context.Context, tx dbx.DBTX, accountID string, phoneHash string) ([]*PendingShare, error) {
	resolved, err := s.repos(tx).ResolveByPhoneHash(ctx, phoneHash, accountID)
	if err != nil {
		return nil, err
	}

	for _, share := range resolved {
		if share.InviterID == accountID {
			continue
		}
		if err := s.materializeEdge(ctx, tx, share.InviterID, accountID); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "note shared with you", "share_id", share.ID, "note_id", share.NoteID, "target_account_id", accountID)
	}

	return resolved, nil
}

func (s *Service) materializeEdge(ctx context.Context, tx dbx.DBTX, ownerID string, contactID string) error {
	repo := s.edges(tx)

	if _, err := repo.Upsert(ctx, ownerID, contactID); err != nil {
		return err
	}

	reciprocal, err := repo.Exists(ctx, contactID, ownerID)
	if err != nil {
		return err
	}
	if err := repo.SetMutual(ctx, ownerID, contactID, reciprocal); err != nil {
		return err
	}
	if reciprocal {
		return repo.SetMutual(ctx, contactID, ownerID, true)
	}
	return nil
}

// Accept transitions a resolved share addressed to accountID to accepted.
// Idempotent: accepting an already-accepted share returns it unchanged.
func (s *Service) Accept(ctx context.Context, accountID string, shareID string) (*PendingShare, error) {
	repo := s.repos(s.db)

	share, err := repo.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	// Do not leak other people's shares: a share not addressed to the
	// caller looks exactly like a missing one.
	if share.TargetAccountID != accountID {
		return nil, common.ErrNotFound
	}

	switch share.Status() {
	case StatusAccepted:
		return share, nil
	case StatusCreated:
		return nil, common.ErrConflict
	}

	if _, err := repo.MarkAccepted(ctx, shareID); err != nil {
		return nil, err
	}

	return repo.GetByID(ctx, shareID)
}

// ListIncoming returns the resolved shares addressed to accountID.
func (s *Service) ListIncoming(ctx context.Context, accountID string) ([]*PendingShare, error) {
	return s.repos(s.db).ListResolvedForTarget(ctx, accountID)
}

// SweepExpired deletes unresolved shares older than the configured TTL.
// A zero TTL disables expiry.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	if s.ttl == 0 {
		return 0, nil
	}

	deleted, err := s.repos(s.db).DeleteExpired(ctx, time.Now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info(ctx, "expired pending shares swept", "count", deleted)
	}
	return deleted, nil
}
