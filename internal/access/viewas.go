package access

import (
	"fmt"
	"strings"

	"github.com/hongminglow/medtour-be/internal/models"
)

// ViewAs is the role an admin is previewing the product as.
type ViewAs string

const (
	ViewAsAdmin    ViewAs = models.RoleAdmin
	ViewAsProvider ViewAs = models.RoleProvider
	ViewAsTraveler ViewAs = models.RoleTraveler
)

// HeaderViewAs carries the impersonation choice on each request. When the
// header is absent the session starts over as ViewAsAdmin.
const HeaderViewAs = "X-View-As"

// ParseViewAs accepts "", admin, provider or traveler (case-insensitive).
// An empty value yields the default.
func ParseViewAs(raw string) (ViewAs, error) {
	switch v := ViewAs(strings.ToLower(strings.TrimSpace(raw))); v {
	case "":
		return ViewAsAdmin, nil
	case ViewAsAdmin, ViewAsProvider, ViewAsTraveler:
		return v, nil
	default:
		return ViewAsAdmin, fmt.Errorf("unknown view %q", raw)
	}
}
