// Package memory is an in-process implementation of storage.Store used by
// tests and local development. It enforces the same uniqueness rules as the
// Postgres store.
package memory

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every table in maps guarded by one RWMutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	roles    map[string]map[string]struct{}
	profiles map[string]models.Profile
	states   map[models.StateKey]models.StateRecord
	now      func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:    map[string]models.User{},
		roles:    map[string]map[string]struct{}{},
		profiles: map[string]models.Profile{},
		states:   map[models.StateKey]models.StateRecord{},
		now:      time.Now,
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateUser(_ context.Context, user models.User, profile *models.Profile) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.CreatedAt = s.now().UTC()
	s.users[user.ID] = user
	for _, role := range user.Roles {
		s.grantLocked(user.ID, role)
	}
	if profile != nil {
		p := *profile
		p.UserID = user.ID
		p.UpdatedAt = user.CreatedAt
		s.profiles[user.ID] = p
	}
	return s.userLocked(user.ID), nil
}

func (s *Store) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[id]; !ok {
		return models.User{}, storage.ErrNotFound
	}
	return s.userLocked(id), nil
}

func (s *Store) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			return s.userLocked(id), nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) HasRole(_ context.Context, userID, role string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roles[userID][role]
	return ok, nil
}

func (s *Store) GrantRole(_ context.Context, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return storage.ErrNotFound
	}
	s.grantLocked(userID, role)
	return nil
}

func (s *Store) FindProfile(_ context.Context, userID string) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) CompleteOnboarding(_ context.Context, userID string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok || !p.IsProvider() {
		return models.Profile{}, storage.ErrNotFound
	}
	p.OnboardingComplete = true
	p.UpdatedAt = s.now().UTC()
	s.profiles[userID] = p
	return p, nil
}

func (s *Store) ReadState(_ context.Context, key models.StateKey) (models.StateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.states[key]
	if !ok {
		return models.StateRecord{}, storage.ErrNotFound
	}
	rec.Payload = slices.Clone(rec.Payload)
	return rec, nil
}

func (s *Store) UpsertState(_ context.Context, key models.StateKey, payload json.RawMessage) (models.StateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key.SubjectID]; !ok {
		return models.StateRecord{}, storage.ErrNotFound
	}
	rec := models.StateRecord{StateKey: key, Payload: slices.Clone(payload), UpdatedAt: s.now().UTC()}
	s.states[key] = rec
	return rec, nil
}

func (s *Store) grantLocked(userID, role string) {
	set, ok := s.roles[userID]
	if !ok {
		set = map[string]struct{}{}
		s.roles[userID] = set
	}
	set[role] = struct{}{}
}

func (s *Store) userLocked(id string) models.User {
	u := s.users[id]
	roles := make([]string, 0, len(s.roles[id]))
	for role := range s.roles[id] {
		roles = append(roles, role)
	}
	slices.Sort(roles)
	u.Roles = roles
	return u
}
