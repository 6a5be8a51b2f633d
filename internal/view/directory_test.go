package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"command-center-backend/internal/model"
)

func TestDirectoryResolve(t *testing.T) {
	dir := NewDirectory([]model.Contact{
		{Email: "Alex@club.test", FirstName: "Alex", LastName: "Chen",
			AdditionalEmails: []string{"a.chen@work.test"}},
		{Email: "sam@club.test", FirstName: "Sam", LastName: "Ruiz"},
	})

	tests := []struct {
		name     string
		email    string
		fallback string
		want     string
	}{
		{"primary email", "alex@club.test", "", "Alex Chen"},
		{"case insensitive", "ALEX@CLUB.TEST", "", "Alex Chen"},
		{"linked email resolves to primary name", "a.chen@work.test", "", "Alex Chen"},
		{"unknown email uses fallback", "nobody@club.test", "Walk In", "Walk In"},
		{"unknown email without fallback", "nobody@club.test", "", "Guest"},
		{"empty email with fallback", "", "Jordan", "Jordan"},
		{"empty everything", "", "", "Guest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dir.Resolve(tt.email, tt.fallback))
		})
	}
}

func TestDirectorySkipsNamelessContacts(t *testing.T) {
	dir := NewDirectory([]model.Contact{
		{Email: "ghost@club.test"},
		{Email: "sam@club.test", FirstName: "Sam"},
	})

	assert.Equal(t, "Guest", dir.Resolve("ghost@club.test", ""))
	assert.Equal(t, "Sam", dir.Resolve("sam@club.test", ""))
}
