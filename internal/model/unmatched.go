package model

import "strings"

// UnmatchedRule decides whether a booking belongs to no known member. The
// upstream data carries three competing signals for this (an explicit flag,
// placeholder email addresses, placeholder display names); the rule is their
// union, with the pattern lists supplied by configuration so the heuristic
// lives in exactly one place.
type UnmatchedRule struct {
	EmailPatterns []string
	NameMarkers   []string
}

// Matches reports whether the record should be treated as unmatched.
func (r UnmatchedRule) Matches(b BookingRecord) bool {
	if b.Unmatched {
		return true
	}
	email := strings.ToLower(b.UserEmail)
	if email != "" {
		for _, p := range r.EmailPatterns {
			if p != "" && strings.Contains(email, strings.ToLower(p)) {
				return true
			}
		}
	}
	name := strings.ToLower(b.UserName)
	if name != "" {
		for _, m := range r.NameMarkers {
			if m != "" && strings.Contains(name, strings.ToLower(m)) {
				return true
			}
		}
	}
	return false
}
