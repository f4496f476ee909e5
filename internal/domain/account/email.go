package account

import "strings"

// NormalizeEmail trims and lowercases; emails are stored lowercase.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
