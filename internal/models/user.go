package models

import "time"

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Roles        []string  `json:"roles"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile holds provider onboarding details for a user. A non-empty
// ProviderID marks the user as a provider.
type Profile struct {
	UserID             string    `json:"user_id"`
	ProviderID         string    `json:"provider_id,omitempty"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsProvider reports whether the profile carries a provider identifier.
func (p Profile) IsProvider() bool {
	return p.ProviderID != ""
}
