package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateDecide(t *testing.T) {
	gate := NewGate("", "")
	provider := Session{SubjectID: "u1", IsProvider: true}

	cases := []struct {
		name    string
		session Session
		path    string
		want    Decision
	}{
		{"loading", LoadingSession(), "/dashboard", Decision{Outcome: OutcomeLoading}},
		{"anonymous", Session{}, "/dashboard", Decision{Outcome: OutcomeRedirect, Target: "/auth"}},
		{"traveler", Session{SubjectID: "u2"}, "/dashboard", Decision{Outcome: OutcomeProceed}},
		{"provider not onboarded", provider, "/dashboard", Decision{Outcome: OutcomeRedirect, Target: "/provider/onboarding"}},
		{"provider on onboarding page", provider, "/provider/onboarding", Decision{Outcome: OutcomeProceed}},
		{"provider onboarded", func() Session { s := provider; s.OnboardingComplete = true; return s }(), "/dashboard", Decision{Outcome: OutcomeProceed}},
		{"admin provider bypasses", func() Session { s := provider; s.IsAdmin = true; return s }(), "/dashboard", Decision{Outcome: OutcomeProceed}},
		{"admin previewing provider bypasses", func() Session { s := provider; s.IsAdmin = true; return s.WithViewAs(ViewAsProvider) }(), "/dashboard", Decision{Outcome: OutcomeProceed}},
		{"admin previewing traveler bypasses", func() Session { s := provider; s.IsAdmin = true; return s.WithViewAs(ViewAsTraveler) }(), "/dashboard", Decision{Outcome: OutcomeProceed}},
		{"non-admin cannot impersonate out of onboarding", provider.WithViewAs(ViewAsTraveler), "/dashboard", Decision{Outcome: OutcomeRedirect, Target: "/provider/onboarding"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, gate.Decide(tc.session, tc.path))
		})
	}
}

func TestZeroGateUsesDefaults(t *testing.T) {
	var gate Gate
	got := gate.Decide(Session{SubjectID: "u1", IsProvider: true}, "/bookings")
	assert.Equal(t, Decision{Outcome: OutcomeRedirect, Target: DefaultOnboardingPath}, got)

	custom := NewGate("/login", "/welcome")
	assert.Equal(t, "/login", custom.Decide(Session{}, "/").Target)
	assert.Equal(t, "/welcome", custom.Decide(Session{SubjectID: "u1", IsProvider: true}, "/").Target)
	assert.Equal(t, OutcomeProceed, custom.Decide(Session{SubjectID: "u1", IsProvider: true}, "/welcome").Outcome)
}

func TestSessionRoles(t *testing.T) {
	admin := Session{SubjectID: "a", IsAdmin: true, IsProvider: true}
	assert.Equal(t, "admin", admin.RealRole())
	assert.Equal(t, "admin", admin.EffectiveRole())
	assert.Equal(t, "traveler", admin.WithViewAs(ViewAsTraveler).EffectiveRole())
	assert.True(t, admin.WithViewAs(ViewAsTraveler).IsAdmin, "impersonation keeps the real privilege flag")

	provider := Session{SubjectID: "p", IsProvider: true}
	assert.Equal(t, ViewAsAdmin, provider.WithViewAs(ViewAsTraveler).ViewAs())
	assert.Equal(t, "provider", provider.WithViewAs(ViewAsTraveler).EffectiveRole())

	assert.Equal(t, "traveler", Session{SubjectID: "t"}.EffectiveRole())
	assert.False(t, LoadingSession().Authenticated())
	assert.False(t, Session{}.Authenticated())
	assert.True(t, provider.Authenticated())
}

func TestParseViewAs(t *testing.T) {
	for raw, want := range map[string]ViewAs{"": ViewAsAdmin, "Admin": ViewAsAdmin, " provider ": ViewAsProvider, "TRAVELER": ViewAsTraveler} {
		got, err := ParseViewAs(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	got, err := ParseViewAs("superuser")
	assert.Error(t, err)
	assert.Equal(t, ViewAsAdmin, got)
}
