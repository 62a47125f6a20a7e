package models

import "time"

// Note is a shared note the user accepted into their local collection.
// The note body itself lives in the main notes store; this record links the
// note to the share it arrived through.
type Note struct {
	// ID is the shared note's identifier, stable across devices.
	ID string

	// ShareID is the pending-share record the note was delivered by.
	ShareID string

	// SharedBy is the account that shared the note.
	SharedBy string

	// AcceptedAt is when the user accepted the share on this device.
	AcceptedAt time.Time
}
