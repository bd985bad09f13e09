// Package credential keeps mail account passwords in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "ner"

// PasswordEnv overrides the keyring lookup for the IMAP password.
const PasswordEnv = "NER_IMAP_PASSWORD"

// ErrNoPassword is returned when the keyring holds no password for an
// account.
var ErrNoPassword = errors.New("no password stored")

// Account identifies a remote mailbox login.
type Account struct {
	Username string
	Host     string
}

// Key is the keyring item key of the account's password.
func (a Account) Key() string {
	return "imap:" + a.Username + "@" + a.Host
}

func (a Account) String() string {
	return a.Username + "@" + a.Host
}

// Store reads and writes account passwords.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open opens the platform keyring, falling back to an encrypted file under
// ~/.config/ner/credentials when no system backend is available.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/ner/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("ner-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

// Password returns the stored password for acct, or ErrNoPassword.
func (s *Store) Password(acct Account) (string, error) {
	item, err := s.ring.Get(acct.Key())
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%s: %w", acct, ErrNoPassword)
	}
	if err != nil {
		return "", fmt.Errorf("reading password for %s: %w", acct, err)
	}
	return string(item.Data), nil
}

// SetPassword stores password for acct, replacing any previous one.
func (s *Store) SetPassword(acct Account, password string) error {
	err := s.ring.Set(keyring.Item{
		Key:         acct.Key(),
		Data:        []byte(password),
		Label:       "ner IMAP password for " + acct.String(),
		Description: "IMAP password",
	})
	if err != nil {
		return fmt.Errorf("storing password for %s: %w", acct, err)
	}
	return nil
}

// DeletePassword forgets the password for acct. Deleting a missing
// password is not an error.
func (s *Store) DeletePassword(acct Account) error {
	err := s.ring.Remove(acct.Key())
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting password for %s: %w", acct, err)
	}
	return nil
}

// IMAPPassword returns a function reading the password for acct from
// PasswordEnv, falling back to the keyring opened on first use.
func IMAPPassword(acct Account) func() (string, error) {
	return func() (string, error) {
		if p := os.Getenv(PasswordEnv); p != "" {
			return p, nil
		}
		s, err := Open()
		if err != nil {
			return "", err
		}
		return s.Password(acct)
	}
}
