package access

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/storage"
)

// RoleChecker is the role-membership predicate.
type RoleChecker interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// ProfileFinder loads provider onboarding state.
type ProfileFinder interface {
	FindProfile(ctx context.Context, userID string) (models.Profile, error)
}

// Resolver builds Sessions from role and profile lookups.
type Resolver struct {
	roles    RoleChecker
	profiles ProfileFinder
}

// NewResolver wires the lookups.
func NewResolver(roles RoleChecker, profiles ProfileFinder) *Resolver {
	return &Resolver{roles: roles, profiles: profiles}
}

// Resolve returns the session for subjectID previewing viewAs. An empty
// subject resolves to an anonymous session. Lookup failures never surface:
// a failed role check means not admin, a failed profile lookup means the
// plain authenticated view.
func (r *Resolver) Resolve(ctx context.Context, subjectID string, viewAs ViewAs) Session {
	if subjectID == "" {
		return Session{}
	}
	var (
		g       errgroup.Group
		isAdmin bool
		profile models.Profile
	)
	g.Go(func() error {
		ok, err := r.roles.HasRole(ctx, subjectID, models.RoleAdmin)
		if err != nil {
			log.Printf("access: admin check for %s failed: %v", subjectID, err)
			return nil
		}
		isAdmin = ok
		return nil
	})
	g.Go(func() error {
		p, err := r.profiles.FindProfile(ctx, subjectID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				log.Printf("access: profile lookup for %s failed: %v", subjectID, err)
			}
			return nil
		}
		profile = p
		return nil
	})
	_ = g.Wait()

	s := Session{
		SubjectID:          subjectID,
		IsAdmin:            isAdmin,
		IsProvider:         profile.IsProvider(),
		OnboardingComplete: profile.IsProvider() && profile.OnboardingComplete,
	}
	return s.WithViewAs(viewAs)
}
