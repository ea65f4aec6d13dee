// SPDX-License-Identifier: EPL-2.0

package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ik5/moodmix/internal/model"
)

// Memory keeps every document in process. Lookups return copies.
type Memory struct {
	mu         sync.RWMutex
	users      map[string]model.User
	media      map[string]model.Media
	recordings map[string]model.Recording
	now        func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[string]model.User),
		media:      make(map[string]model.Media),
		recordings: make(map[string]model.Recording),
		now:        time.Now,
	}
}

func (s *Memory) CreateUser(_ context.Context, u *model.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email %q", ErrDuplicate, u.Email)
		}
	}
	if _, ok := s.users[u.ID]; ok && u.ID != "" {
		return fmt.Errorf("%w: user id %q", ErrDuplicate, u.ID)
	}

	stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt, s.now())
	s.users[u.ID] = *u

	return nil
}

func (s *Memory) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}

	return nil, fmt.Errorf("%w: user with email %q", ErrNotFound, email)
}

func (s *Memory) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, id)
	}

	return &u, nil
}

func (s *Memory) UserExists(_ context.Context, username, email string) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var usernameTaken, emailTaken bool
	for _, u := range s.users {
		usernameTaken = usernameTaken || u.Username == username
		emailTaken = emailTaken || u.Email == email
	}

	return usernameTaken, emailTaken, nil
}

func (s *Memory) CreateMedia(_ context.Context, m *model.Media) error {
	if err := m.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.media {
		if existing.Filename == m.Filename {
			return fmt.Errorf("%w: media filename %q", ErrDuplicate, m.Filename)
		}
	}
	if _, ok := s.media[m.ID]; ok && m.ID != "" {
		return fmt.Errorf("%w: media id %q", ErrDuplicate, m.ID)
	}

	stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt, s.now())
	s.media[m.ID] = *m

	return nil
}

func (s *Memory) MediaByID(_ context.Context, id string) (*model.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.media[id]
	if !ok {
		return nil, fmt.Errorf("%w: media %q", ErrNotFound, id)
	}

	return &m, nil
}

func (s *Memory) MediaByUsername(_ context.Context, username string) ([]model.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Media
	for _, m := range s.media {
		if m.Username == username {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b model.Media) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return out, nil
}

func (s *Memory) CreateRecording(_ context.Context, r *model.Recording) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recordings[r.ID]; ok && r.ID != "" {
		return fmt.Errorf("%w: recording id %q", ErrDuplicate, r.ID)
	}

	stamp(&r.ID, &r.CreatedAt, nil, s.now())
	s.recordings[r.ID] = *r

	return nil
}

func (s *Memory) RecordingsByUsername(_ context.Context, username string) ([]model.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Recording
	for _, r := range s.recordings {
		if r.Username == username {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b model.Recording) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return out, nil
}

func (s *Memory) Close(context.Context) error { return nil }
