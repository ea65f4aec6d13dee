// SPDX-License-Identifier: EPL-2.0

// Package auth handles passwords, cookie sessions and the middleware that
// guards pages.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/ik5/moodmix/internal/model"
	"github.com/ik5/moodmix/internal/store"
)

const (
	sessionName = "moodmix"
	userIDKey   = "uid"
	maxAge      = 7 * 24 * 60 * 60
)

type ctxKey struct{}

// Sessions keeps the logged-in user ID in a signed cookie.
type Sessions struct {
	store  sessions.Store
	users  store.Store
	logger *zap.Logger
}

// NewSessions signs cookies with secret. An empty secret gets a random key,
// so sessions do not survive a restart.
func NewSessions(secret []byte, secure bool, users store.Store, logger *zap.Logger) *Sessions {
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}

	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Sessions{store: cs, users: users, logger: logger}
}

func (s *Sessions) session(r *http.Request) *sessions.Session {
	// Get returns a fresh session along with a decode error for a bad cookie.
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		s.logger.Debug("discarding unreadable session cookie", zap.Error(err))
	}

	return sess
}

func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, u *model.User) error {
	sess := s.session(r)
	sess.Values[userIDKey] = u.ID

	return sess.Save(r, w)
}

func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := s.session(r)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1

	return sess.Save(r, w)
}

// UserID returns the ID stored by Login.
func (s *Sessions) UserID(r *http.Request) (string, bool) {
	id, ok := s.session(r).Values[userIDKey].(string)
	return id, ok && id != ""
}

// AddFlash queues a one-shot message for the next page render.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	sess := s.session(r)
	sess.AddFlash(msg)

	return sess.Save(r, w)
}

// Flashes pops the queued messages.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []string {
	sess := s.session(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("save session after reading flashes", zap.Error(err))
	}

	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}

	return out
}

// LoadUser puts the logged-in *model.User in the request context. A session
// pointing at a deleted user is treated as logged out.
func (s *Sessions) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.UserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		u, err := s.users.UserByID(r.Context(), id)
		switch {
		case err == nil:
			r = r.WithContext(WithUser(r.Context(), u))
		case errors.Is(err, store.ErrNotFound):
		default:
			s.logger.Error("load session user", zap.String("userID", id), zap.Error(err))
		}

		next.ServeHTTP(w, r)
	})
}

// RequireUser redirects guests to /login. It expects LoadUser to run first.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFrom(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectIfUser sends logged-in users away from the login and register pages.
func RedirectIfUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFrom(r.Context()); ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*model.User)
	return u, ok && u != nil
}
