// Package email contains small helpers for working with email-shaped
// identities: splitting the local part and deriving a display name for
// outgoing messages.
package email

import (
	"strings"
	"unicode"
)

// LocalPart returns the portion of an email address before the '@'.
// Addresses without an '@' are returned unchanged.
func LocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// DeriveNameFromEmail derives a first/last display name from the local part
// of an address. "a.b@example.com" becomes ("A", "B"); addresses with a
// single segment fall back to "User" for the missing part.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := LocalPart(email)

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
