package dto

type GrantRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type SessionResponse struct {
	SubjectID          string `json:"subject_id"`
	IsAdmin            bool   `json:"is_admin"`
	IsProvider         bool   `json:"is_provider"`
	OnboardingComplete bool   `json:"onboarding_complete"`
	ViewAs             string `json:"view_as"`
	EffectiveRole      string `json:"effective_role"`
}

type AccessResponse struct {
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
	Target  string `json:"target,omitempty"`
}
