// Package access decides whether a session may view a page and resolves the
// session flags (admin, provider, onboarding) that decision depends on.
package access

// Default destinations used when a Gate leaves them blank.
const (
	DefaultSignInPath     = "/auth"
	DefaultOnboardingPath = "/provider/onboarding"
)

// Outcome is the kind of Decision.
type Outcome string

const (
	OutcomeLoading  Outcome = "loading"
	OutcomeProceed  Outcome = "proceed"
	OutcomeRedirect Outcome = "redirect"
)

// Decision is what the caller should do with a navigation. Target is set
// only for redirects.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Gate maps (session, path) to a Decision. The caller performs the
// transition.
type Gate struct {
	SignInPath     string
	OnboardingPath string
}

// NewGate returns a Gate with the given destinations, defaulting blanks.
func NewGate(signIn, onboarding string) Gate {
	g := Gate{SignInPath: signIn, OnboardingPath: onboarding}
	if g.SignInPath == "" {
		g.SignInPath = DefaultSignInPath
	}
	if g.OnboardingPath == "" {
		g.OnboardingPath = DefaultOnboardingPath
	}
	return g
}

// Decide evaluates one navigation.
func (g Gate) Decide(s Session, path string) Decision {
	g = NewGate(g.SignInPath, g.OnboardingPath)
	switch {
	case s.Loading:
		return Decision{Outcome: OutcomeLoading}
	case s.SubjectID == "":
		return Decision{Outcome: OutcomeRedirect, Target: g.SignInPath}
	case g.confinedToOnboarding(s, path):
		return Decision{Outcome: OutcomeRedirect, Target: g.OnboardingPath}
	default:
		return Decision{Outcome: OutcomeProceed}
	}
}

// confinedToOnboarding holds for providers who have not finished onboarding.
// Admins are exempt whatever they are previewing.
func (g Gate) confinedToOnboarding(s Session, path string) bool {
	return s.IsProvider &&
		!s.OnboardingComplete &&
		path != g.OnboardingPath &&
		!s.IsAdmin &&
		s.EffectiveRole() != string(ViewAsTraveler)
}
