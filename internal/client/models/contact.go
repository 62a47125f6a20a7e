// Package models defines client-side data models used by the NoteLink CLI.
package models

import "time"

// Contact is a cached row of the user's server-side contact list.
type Contact struct {
	// AccountID identifies the contact's account on the server.
	AccountID string

	// Username is the display name the contact chose, possibly empty.
	Username string

	// Mutual reports whether the contact has added this user back.
	Mutual bool

	// AddedAt is when this user added the contact.
	AddedAt time.Time
}
