package slugs

import (
	"strings"

	"github.com/google/uuid"
)

// Generate derives an initial slug from the owner's name when a portfolio is
// first created. A short user-ID prefix is appended so two owners with the
// same name do not collide on the common case.
func Generate(name string, userID uuid.UUID) string {
	base := strings.Join(strings.Fields(strings.ToLower(name)), "-")
	base = Sanitize(base)
	base = strings.Trim(base, "-")

	suffix := strings.ReplaceAll(userID.String(), "-", "")[:6]
	if base == "" {
		return "user-" + suffix
	}
	if len(base) > MaxLength-len(suffix)-1 {
		base = base[:MaxLength-len(suffix)-1]
	}
	return base + "-" + suffix
}
