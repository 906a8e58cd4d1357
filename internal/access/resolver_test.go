package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/storage"
	"github.com/hongminglow/medtour-be/internal/storage/memory"
)

type failingRoles struct{}

func (failingRoles) HasRole(context.Context, string, string) (bool, error) {
	return true, errors.New("network down")
}

type failingProfiles struct{}

func (failingProfiles) FindProfile(context.Context, string) (models.Profile, error) {
	return models.Profile{}, errors.New("network down")
}

func seed(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	_, err := store.CreateUser(ctx, models.User{ID: "prov", Username: "clinic", Email: "c@example.com", Roles: []string{models.RoleProvider}},
		&models.Profile{ProviderID: "p-1"})
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, models.User{ID: "boss", Username: "boss", Email: "b@example.com", Roles: []string{models.RoleAdmin}}, nil)
	require.NoError(t, err)
	return store
}

func TestResolve(t *testing.T) {
	store := seed(t)
	r := NewResolver(store, store)
	ctx := context.Background()

	prov := r.Resolve(ctx, "prov", ViewAsTraveler)
	assert.Equal(t, Session{SubjectID: "prov", IsProvider: true}, prov)

	boss := r.Resolve(ctx, "boss", ViewAsProvider)
	assert.True(t, boss.IsAdmin)
	assert.False(t, boss.IsProvider)
	assert.Equal(t, ViewAsProvider, boss.ViewAs())

	assert.Equal(t, Session{}, r.Resolve(ctx, "", ViewAsAdmin))

	_, err := store.CompleteOnboarding(ctx, "prov")
	require.NoError(t, err)
	assert.True(t, r.Resolve(ctx, "prov", ViewAsAdmin).OnboardingComplete)
}

func TestResolveFailsClosedForAdmin(t *testing.T) {
	store := seed(t)
	s := NewResolver(failingRoles{}, store).Resolve(context.Background(), "boss", ViewAsTraveler)
	assert.False(t, s.IsAdmin, "a failed role check never grants admin")
	assert.Equal(t, ViewAsAdmin, s.ViewAs())
	assert.True(t, s.Authenticated())
}

func TestResolveFailsOpenForBaseView(t *testing.T) {
	store := seed(t)
	s := NewResolver(store, failingProfiles{}).Resolve(context.Background(), "prov", ViewAsAdmin)
	assert.False(t, s.IsProvider)
	assert.Equal(t, OutcomeProceed, NewGate("", "").Decide(s, "/dashboard").Outcome)

	_, err := store.FindProfile(context.Background(), "boss")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
