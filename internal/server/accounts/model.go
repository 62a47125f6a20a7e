package accounts

import "time"

// Account is the durable identity bound to a device. It is created exactly
// once, on the first successful authentication from that device, and is
// otherwise immutable except for profile fields.
type Account struct {
	ID        string
	DeviceID  string
	Username  string
	PhoneHash string // empty until the account binds a phone number
	CreatedAt time.Time
}
