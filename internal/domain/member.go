package domain

import "time"

// DefaultMembershipTier is assigned to members created without an explicit tier.
const DefaultMembershipTier = "standard"

// Member is the domain representation of a registered member.
//
// PasswordHash only ever holds a bcrypt hash; the plaintext secret is never stored.
type Member struct {
	ID MemberID

	Username       string
	Email          string
	PasswordHash   string
	MembershipTier string

	CreatedAt time.Time
	UpdatedAt time.Time
}
