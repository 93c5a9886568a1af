// Package sessiontoken signs and verifies the value stored in the session cookie.
//
// The cookie carries an HS256 JWT whose jti is the server-side session id and
// whose sub is the member id. A verified token is necessary but not sufficient:
// callers must still find the session record, so logout takes effect at once.
package sessiontoken

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/unique-meal/member-portal/internal/domain"
)

var ErrUnauthorized = errors.New("unauthorized")

// ErrExpired is returned, together with the token's claims, when a correctly
// signed token has passed its expiry. It matches ErrUnauthorized.
var ErrExpired = fmt.Errorf("%w: session token expired", ErrUnauthorized)

const minSecretLen = 32

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Claims are the verified contents of a session token.
type Claims struct {
	SessionID domain.SessionID
	MemberID  domain.MemberID
	ExpiresAt time.Time
}

type Codec struct {
	secret []byte
	issuer string
	clock  Clock
}

func New(secret []byte, issuer string) (*Codec, error) {
	return NewWithOptions(secret, issuer, nil)
}

func NewWithOptions(secret []byte, issuer string, clock Clock) (*Codec, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("session secret must be at least %d bytes", minSecretLen)
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Codec{
		secret: append([]byte(nil), secret...),
		issuer: issuer,
		clock:  clock,
	}, nil
}

// Sign mints a token for the given session.
func (c *Codec) Sign(sessionID domain.SessionID, memberID domain.MemberID, expiresAt time.Time) (string, error) {
	if sessionID == "" || memberID == "" {
		return "", errors.New("session id and member id are required")
	}
	now := c.clock.Now()
	claims := jwt.RegisteredClaims{
		ID:        string(sessionID),
		Subject:   string(memberID),
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return s, nil
}

// Parse verifies signature, algorithm, issuer and expiry. Failures are reported
// as ErrUnauthorized, except an otherwise valid expired token, which yields its
// claims and ErrExpired so the caller can discard the server-side record.
func (c *Codec) Parse(token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, ErrUnauthorized
	}

	var rc jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &rc, func(t *jwt.Token) (any, error) {
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if rc.ID == "" || rc.Subject == "" || rc.ExpiresAt == nil {
		return Claims{}, ErrUnauthorized
	}
	claims := Claims{
		SessionID: domain.SessionID(rc.ID),
		MemberID:  domain.MemberID(rc.Subject),
		ExpiresAt: rc.ExpiresAt.Time.UTC(),
	}
	if err != nil {
		// Signatures are checked before claims, so an expiry error means the
		// token is authentic.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) && rc.Issuer == c.issuer {
			return claims, ErrExpired
		}
		return Claims{}, ErrUnauthorized
	}
	if !parsed.Valid {
		return Claims{}, ErrUnauthorized
	}
	return claims, nil
}
