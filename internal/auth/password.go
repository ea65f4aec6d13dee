// SPDX-License-Identifier: EPL-2.0

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ik5/moodmix/internal/model"
	"github.com/ik5/moodmix/internal/store"
)

// PasswordCost is the bcrypt work factor for new hashes.
const PasswordCost = 10

var (
	ErrUnknownEmail  = errors.New("no user with that email")
	ErrWrongPassword = errors.New("password incorrect")
	ErrEmailTaken    = errors.New("email is already in use")
	ErrUsernameTaken = errors.New("username is already in use")
	ErrMissingField  = errors.New("username, email and password are required")
)

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail trims and lower-cases an address so lookups are exact.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate looks the user up by email and checks the password.
func Authenticate(ctx context.Context, users store.Store, email, password string) (*model.User, error) {
	u, err := users.UserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownEmail
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrWrongPassword
	}

	return u, nil
}

// Register creates a user. When the username or email is taken the error
// joins ErrUsernameTaken and/or ErrEmailTaken.
func Register(ctx context.Context, users store.Store, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingField
	}

	usernameTaken, emailTaken, err := users.UserExists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	var taken []error
	if emailTaken {
		taken = append(taken, ErrEmailTaken)
	}
	if usernameTaken {
		taken = append(taken, ErrUsernameTaken)
	}
	if len(taken) > 0 {
		return nil, errors.Join(taken...)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{Username: username, Email: email, PasswordHash: hash}
	if err := users.CreateUser(ctx, u); err != nil {
		// Lost a race with a concurrent registration on the unique email index.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	return u, nil
}
