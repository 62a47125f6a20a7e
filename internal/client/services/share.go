package services

import (
	"context"
	"fmt"
	"time"

	"github.com/notelinkapp/notelink/internal/client/client"
	"github.com/notelinkapp/notelink/internal/client/models"
	"github.com/notelinkapp/notelink/internal/client/repositories/notes"
	"github.com/notelinkapp/notelink/internal/phonehash"
)

// ShareService shares notes with people by phone number and pulls shares
// addressed to this user.
//
// Contract:
//   - ShareNote: hand a note off to a recipient identified by phone number.
//     The number is hashed locally before it goes on the wire. The recipient
//     does not need to be registered yet; the server parks the share until
//     they are.
//   - IncomingShares: list shares addressed to this user.
//   - AcceptShare: accept a share on the server and record the note locally.
//     Accepting twice is a no-op, so a crash between the two steps heals on
//     retry.
type ShareService interface {
	ShareNote(ctx context.Context, phone, noteID string) (*client.Share, error)
	IncomingShares(ctx context.Context) ([]*client.Share, error)
	AcceptShare(ctx context.Context, shareID string) (*models.Note, error)
	AcceptedNotes(ctx context.Context) ([]*models.Note, error)
}

type shareService struct {
	client   client.Client
	notes    notes.Repository
	hasher   phonehash.Strategy
	sessions SessionInvalidator
}

// NewShareService constructs a ShareService over the API client, the local
// note store, and the phone hashing strategy. Unauthorized server responses
// are reported to sessions, which drops the stored token.
func NewShareService(apiClient client.Client, noteRepo notes.Repository, hasher phonehash.Strategy, sessions SessionInvalidator) ShareService {
	return &shareService{client: apiClient, notes: noteRepo, hasher: hasher, sessions: sessions}
}

func (s *shareService) ShareNote(ctx context.Context, phone, noteID string) (*client.Share, error) {
	hash, err := s.hasher.Hash(phone)
	if err != nil {
		return nil, fmt.Errorf("phone error: %w", err)
	}

	share, err := s.client.CreateShare(ctx, "", hash, noteID)
	if err != nil {
		dropSessionOnAuthError(ctx, s.sessions, err)
		return nil, fmt.Errorf("share error: %w", err)
	}
	return share, nil
}

func (s *shareService) IncomingShares(ctx context.Context) ([]*client.Share, error) {
	shares, err := s.client.ListShares(ctx)
	if err != nil {
		dropSessionOnAuthError(ctx, s.sessions, err)
		return nil, fmt.Errorf("share list error: %w", err)
	}
	return shares, nil
}

// AcceptShare accepts the share server-side first, then records the note in
// the local store keyed by note id. The server accept is idempotent and the
// local write is an upsert, so replays converge on the same state.
func (s *shareService) AcceptShare(ctx context.Context, shareID string) (*models.Note, error) {
	share, err := s.client.AcceptShare(ctx, shareID)
	if err != nil {
		dropSessionOnAuthError(ctx, s.sessions, err)
		return nil, fmt.Errorf("share accept error: %w", err)
	}

	note := &models.Note{
		ID:         share.NoteID,
		ShareID:    share.ID,
		SharedBy:   share.InviterID,
		AcceptedAt: time.Now().UTC(),
	}
	if err := s.notes.Upsert(ctx, note); err != nil {
		return nil, fmt.Errorf("note saving error: %w", err)
	}
	return note, nil
}

func (s *shareService) AcceptedNotes(ctx context.Context) ([]*models.Note, error) {
	return s.notes.List(ctx)
}
