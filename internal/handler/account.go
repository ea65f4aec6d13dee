// SPDX-License-Identifier: EPL-2.0

package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ik5/moodmix/internal/auth"
)

// Login handles POST /login. Failures flash a message and return to the form.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	u, err := auth.Authenticate(r.Context(), h.Store, r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		msg := "Login failed, please try again."
		switch {
		case errors.Is(err, auth.ErrUnknownEmail):
			msg = "No user with that email."
		case errors.Is(err, auth.ErrWrongPassword):
			msg = "Password incorrect."
		default:
			h.Logger.Error("login", zap.Error(err))
		}
		h.flashAndRedirect(w, r, "/login", msg)
		return
	}

	if err := h.Sessions.Login(w, r, u); err != nil {
		h.writeError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Register handles POST /register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	u, err := auth.Register(r.Context(), h.Store,
		r.FormValue("username"), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		var msgs []string
		if errors.Is(err, auth.ErrEmailTaken) {
			msgs = append(msgs, "Email is already in use.")
		}
		if errors.Is(err, auth.ErrUsernameTaken) {
			msgs = append(msgs, "Username is already in use.")
		}
		if errors.Is(err, auth.ErrMissingField) {
			msgs = append(msgs, "Username, email and password are required.")
		}
		if len(msgs) == 0 {
			h.Logger.Error("register", zap.Error(err))
			msgs = append(msgs, "Registration failed, please try again.")
		}
		h.flashAndRedirect(w, r, "/register", msgs...)
		return
	}

	h.Logger.Info("user registered", zap.String("userID", u.ID), zap.String("username", u.Username))
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Logout handles POST and DELETE /logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) flashAndRedirect(w http.ResponseWriter, r *http.Request, to string, msgs ...string) {
	for _, msg := range msgs {
		if err := h.Sessions.AddFlash(w, r, msg); err != nil {
			h.Logger.Warn("add flash", zap.Error(err))
		}
	}

	http.Redirect(w, r, to, http.StatusFound)
}
