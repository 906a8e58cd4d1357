package access

import "github.com/hongminglow/medtour-be/internal/models"

// Session is the resolved identity for one navigation. The zero value is an
// anonymous, fully loaded session.
type Session struct {
	Loading            bool
	SubjectID          string
	IsAdmin            bool
	IsProvider         bool
	OnboardingComplete bool

	viewAs ViewAs
}

// LoadingSession is reported while identity has not resolved yet.
func LoadingSession() Session {
	return Session{Loading: true}
}

// Authenticated reports whether a subject is signed in.
func (s Session) Authenticated() bool {
	return !s.Loading && s.SubjectID != ""
}

// WithViewAs returns a copy previewing v. Only admins may impersonate; for
// everybody else the request is ignored.
func (s Session) WithViewAs(v ViewAs) Session {
	if s.IsAdmin {
		s.viewAs = v
	}
	return s
}

// ViewAs returns the impersonated role. It is ViewAsAdmin for non-admins and
// must not be used for privilege checks; use IsAdmin.
func (s Session) ViewAs() ViewAs {
	if !s.IsAdmin || s.viewAs == "" {
		return ViewAsAdmin
	}
	return s.viewAs
}

// RealRole is the most privileged role the subject actually holds.
func (s Session) RealRole() string {
	switch {
	case s.IsAdmin:
		return models.RoleAdmin
	case s.IsProvider:
		return models.RoleProvider
	default:
		return models.RoleTraveler
	}
}

// EffectiveRole is the role the UI should render for: the impersonated role
// for admins, the real role otherwise.
func (s Session) EffectiveRole() string {
	if s.IsAdmin {
		return string(s.ViewAs())
	}
	return s.RealRole()
}
