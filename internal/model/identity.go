package model

import (
	"fmt"

	"github.com/emersion/go-message/mail"
)

// Identity is a sender persona used when composing mail.
type Identity struct {
	Name          string `mapstructure:"name" yaml:"name"`
	Email         string `mapstructure:"email" yaml:"email"`
	SignaturePath string `mapstructure:"signature" yaml:"signature"`

	// Drafts is the maildir composed messages are saved into.
	Drafts string `mapstructure:"drafts" yaml:"drafts"`
}

// Address returns the identity formatted as an RFC 5322 address.
func (i Identity) Address() string {
	return (&mail.Address{Name: i.Name, Address: i.Email}).String()
}

// FindIdentity returns the identity named name, the first identity when
// name is empty, or an error.
func FindIdentity(identities []Identity, name string) (Identity, error) {
	if len(identities) == 0 {
		return Identity{}, fmt.Errorf("no identities configured")
	}
	if name == "" {
		return identities[0], nil
	}
	for _, id := range identities {
		if id.Name == name {
			return id, nil
		}
	}
	return Identity{}, fmt.Errorf("unknown identity %q", name)
}
