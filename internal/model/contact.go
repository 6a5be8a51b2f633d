package model

import "strings"

// Contact is one row of the member-name directory. A contact can carry
// additional linked emails that resolve to the same display name.
type Contact struct {
	Email            string   `json:"email"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	AdditionalEmails []string `json:"additional_emails,omitempty"`
}

// DisplayName returns "First Last" with missing parts dropped.
func (c Contact) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
