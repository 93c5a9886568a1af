package httpapi

import (
	"context"

	"github.com/unique-meal/member-portal/internal/domain"
)

type memberKey struct{}

type sessionCookieKey struct{}

// WithMember stores the authenticated member in ctx.
func WithMember(ctx context.Context, m domain.Member) context.Context {
	return context.WithValue(ctx, memberKey{}, m)
}

func MemberFromContext(ctx context.Context) (domain.Member, bool) {
	m, ok := ctx.Value(memberKey{}).(domain.Member)
	return m, ok && m.ID != ""
}

func withSessionCookie(ctx context.Context, v string) context.Context {
	return context.WithValue(ctx, sessionCookieKey{}, v)
}

func sessionCookieFromContext(ctx context.Context) string {
	v, _ := ctx.Value(sessionCookieKey{}).(string)
	return v
}
