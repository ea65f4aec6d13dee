// SPDX-License-Identifier: EPL-2.0

// Package store persists users, media and recordings.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/moodmix/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Store is the document store behind the web app. Create methods assign an ID
// when the document has none and stamp the timestamps.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	// UserExists reports which of username and email are already taken.
	UserExists(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)

	CreateMedia(ctx context.Context, m *model.Media) error
	MediaByID(ctx context.Context, id string) (*model.Media, error)
	MediaByUsername(ctx context.Context, username string) ([]model.Media, error)

	CreateRecording(ctx context.Context, r *model.Recording) error
	RecordingsByUsername(ctx context.Context, username string) ([]model.Recording, error)

	Close(ctx context.Context) error
}

// NewID returns a fresh document ID.
func NewID() string {
	return uuid.NewString()
}

func stamp(id *string, created *time.Time, updated *time.Time, now time.Time) {
	if *id == "" {
		*id = NewID()
	}
	if created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}
