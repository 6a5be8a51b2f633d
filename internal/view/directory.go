package view

import (
	"strings"

	"command-center-backend/internal/model"
)

// Directory maps lowercase member emails to display names. Additional
// linked emails resolve to the same name as their primary contact.
type Directory map[string]string

// NewDirectory builds the lookup from the contact payload. The first
// contact claiming an email wins.
func NewDirectory(contacts []model.Contact) Directory {
	d := make(Directory, len(contacts))
	for _, c := range contacts {
		name := c.DisplayName()
		if name == "" {
			continue
		}
		emails := append([]string{c.Email}, c.AdditionalEmails...)
		for _, email := range emails {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				continue
			}
			if _, exists := d[email]; !exists {
				d[email] = name
			}
		}
	}
	return d
}

// Resolve returns the directory name for email, the fallback otherwise, and
// the literal "Guest" when both come up empty.
func (d Directory) Resolve(email, fallback string) string {
	if email != "" {
		if name, ok := d[strings.ToLower(strings.TrimSpace(email))]; ok {
			return name
		}
	}
	if fallback != "" {
		return fallback
	}
	return "Guest"
}
