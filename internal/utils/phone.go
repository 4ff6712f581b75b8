package utils

import (
	"regexp"
	"strings"
)

var myanmarLocalPhone = regexp.MustCompile(`^09\d{7,15}$`)

// MyanmarPhone is a local mobile number in the forms the auth flow needs.
type MyanmarPhone struct {
	// E164 is the canonical "+959…" form stored on the user.
	E164 string
	// Digits is E164 without the plus sign; it doubles as the username.
	Digits string
}

// Email is the synthetic address the session provider signs in with.
func (p MyanmarPhone) Email() string {
	return "user_" + p.Digits + "@phone.local"
}

// NormalizeMyanmarPhone accepts a local "09…" number, ignoring spaces and
// dashes. It returns false for anything else.
func NormalizeMyanmarPhone(raw string) (MyanmarPhone, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, raw)

	if !myanmarLocalPhone.MatchString(cleaned) {
		return MyanmarPhone{}, false
	}

	digits := "95" + cleaned[1:]
	return MyanmarPhone{E164: "+" + digits, Digits: digits}, true
}
