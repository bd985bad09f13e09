package credential

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

var acct = Account{Username: "me", Host: "imap.example.org"}

func TestAccountKey(t *testing.T) {
	if got := acct.Key(); got != "imap:me@imap.example.org" {
		t.Errorf("Key = %q", got)
	}
}

func TestStorePasswordLifecycle(t *testing.T) {
	s := NewStore(keyring.NewArrayKeyring(nil))

	if _, err := s.Password(acct); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("missing password err = %v, want ErrNoPassword", err)
	}

	if err := s.SetPassword(acct, "s3cret"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	got, err := s.Password(acct)
	if err != nil || got != "s3cret" {
		t.Fatalf("Password = %q, %v", got, err)
	}

	if err := s.DeletePassword(acct); err != nil {
		t.Fatalf("DeletePassword failed: %v", err)
	}
	if err := s.DeletePassword(acct); err != nil {
		t.Errorf("deleting twice failed: %v", err)
	}
	if _, err := s.Password(acct); !errors.Is(err, ErrNoPassword) {
		t.Errorf("after delete err = %v", err)
	}
}

func TestIMAPPasswordPrefersEnvironment(t *testing.T) {
	t.Setenv(PasswordEnv, "from-env")
	got, err := IMAPPassword(acct)()
	if err != nil {
		t.Fatalf("IMAPPassword failed: %v", err)
	}
	if got != "from-env" {
		t.Errorf("password = %q", got)
	}
}
