package shares

import "time"

// Share states. Transitions are strictly created → resolved → accepted;
// accepted is terminal.
const (
	StatusCreated  = "created"
	StatusResolved = "resolved"
	StatusAccepted = "accepted"
)

// PendingShare is a note share addressed to a phone number that had no bound
// account when the share was made. It is held in the ledger until the number
// registers; resolution then binds the target account.
type PendingShare struct {
	ID              string
	InviterID       string
	TargetPhoneHash string
	TargetAccountID string // empty until resolved
	NoteID          string
	CreatedAt       time.Time
	ResolvedAt      *time.Time
	AcceptedAt      *time.Time
}

func (s *PendingShare) Status() string {
	switch {
	case s.AcceptedAt != nil:
		return StatusAccepted
	case s.ResolvedAt != nil:
		return StatusResolved
	default:
		return StatusCreated
	}
}
