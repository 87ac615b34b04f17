package entity

// SessionID is the opaque identity of one client session. It is assigned at
// connect time and survives reconnects; it is never a transport handle.
type SessionID string

// Participant is one of up to two sessions bound to a room. The mark is
// assigned on join and immutable afterwards.
type Participant struct {
	SessionID SessionID `json:"-"`
	Name      string    `json:"name"`
	Mark      string    `json:"mark"`
}
