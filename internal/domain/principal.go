package domain

import "strings"

// Principal is an authenticated identity keyed by email.
type Principal struct {
	Email       string
	DisplayName string
	PhotoURL    string
}

// Name returns the display name, falling back to the email.
func (p Principal) Name() string {
	if strings.TrimSpace(p.DisplayName) != "" {
		return p.DisplayName
	}
	return p.Email
}

// SameEmail compares emails case-insensitively.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
