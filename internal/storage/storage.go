package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hongminglow/medtour-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures account persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User, profile *models.Profile) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
}

// RoleStore answers and records role membership.
type RoleStore interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
	GrantRole(ctx context.Context, userID, role string) error
}

// ProfileStore reads and updates provider onboarding state.
type ProfileStore interface {
	FindProfile(ctx context.Context, userID string) (models.Profile, error)
	CompleteOnboarding(ctx context.Context, userID string) (models.Profile, error)
}

// StateStore is the remote side of the planner state synchronizer. Upsert
// replaces the payload on conflict of the composite key.
type StateStore interface {
	ReadState(ctx context.Context, key models.StateKey) (models.StateRecord, error)
	UpsertState(ctx context.Context, key models.StateKey, payload json.RawMessage) (models.StateRecord, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles every persistence concern the server wires together.
type Store interface {
	Pinger
	UserStore
	RoleStore
	ProfileStore
	StateStore
}
