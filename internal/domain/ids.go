package domain

// MemberID is an internal identifier for a member record.
type MemberID string

// BookingID is an internal identifier for a meal booking record.
type BookingID string

// SessionID identifies a server-side login session. It is never shown to the
// client directly; the session cookie carries it inside a signed token.
type SessionID string
