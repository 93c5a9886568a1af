package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/unique-meal/member-portal/internal/app/members"
	"github.com/unique-meal/member-portal/internal/app/sessions"
)

// requestLogger writes one line per request.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := statusOf(ww)
			entry := log.WithFields(logrus.Fields{
				"request_id":  middleware.GetReqID(r.Context()),
				"method":      r.Method,
				"route":       routePattern(r),
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       ww.BytesWritten(),
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("request served")
				return
			}
			entry.Info("request served")
		})
	}
}

// loadSession attaches the member behind a valid session cookie to the request
// context. Requests without a live session continue anonymously and lose the
// stale cookie.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.cookie.Name)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		sess, err := s.sessions.Resolve(ctx, c.Value)
		if err != nil {
			if !errors.Is(err, sessions.ErrNoSession) {
				s.serverError(w, r, err)
				return
			}
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		m, err := s.members.GetProfile(ctx, sess.MemberID)
		if err != nil {
			var ae *members.Error
			if !errors.As(err, &ae) || ae.Status != http.StatusNotFound {
				s.serverError(w, r, err)
				return
			}
			// Session outlived its member.
			s.endOrphanedSession(r, c.Value)
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx = withSessionCookie(WithMember(ctx, m), c.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// endOrphanedSession drops a session whose member is gone. The request goes on
// either way, so a store failure is only logged.
func (s *Server) endOrphanedSession(r *http.Request, cookieValue string) {
	if err := s.sessions.End(r.Context(), cookieValue); err != nil {
		s.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Warn("failed to end orphaned session")
	}
}

// requireMember redirects anonymous requests to the login page.
func requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := MemberFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
