package contacts

import "time"

// Edge is one direction of the contact graph. Mutual is true only while the
// reciprocal edge exists; it is recomputed on every write, never taken from
// the caller.
type Edge struct {
	OwnerID   string
	ContactID string
	Mutual    bool
	CreatedAt time.Time
}

// Contact is the directory view of an edge returned to clients: the edge
// joined with the contact's account profile.
type Contact struct {
	AccountID string
	Username  string
	Mutual    bool
	AddedAt   time.Time
}
