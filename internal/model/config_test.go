package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.SortOrder() != SortNewestFirst {
		t.Errorf("sort order = %v, want newest_first", cfg.SortOrder())
	}
	if len(cfg.Searches) != 3 || cfg.Searches[0].Name != "New" {
		t.Errorf("default searches = %+v", cfg.Searches)
	}
	if !cfg.General.RefreshView || cfg.General.RefreshInterval != time.Minute {
		t.Errorf("general = %+v", cfg.General)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
general:
  sort_mode: oldest_first
  refresh_view: false
  refresh_interval: 2m
  add_sig_dashes: false
maildir: /var/mail/me
searches:
  - name: Lists
    query: tag:lists
colors:
  search_view_date:
    fg: red
    bg: default
identities:
  - name: Work
    email: me@work.example
    drafts: /tmp/drafts
default_identity: Work
imap:
  enabled: true
  host: imap.example.org
  username: me
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.SortOrder() != SortOldestFirst {
		t.Errorf("sort order = %v, want oldest_first", cfg.SortOrder())
	}
	if cfg.General.RefreshView || cfg.General.AddSigDashes {
		t.Errorf("booleans not read: %+v", cfg.General)
	}
	if cfg.General.RefreshInterval != 2*time.Minute {
		t.Errorf("refresh interval = %v, want 2m", cfg.General.RefreshInterval)
	}
	if cfg.Maildir != "/var/mail/me" {
		t.Errorf("maildir = %q", cfg.Maildir)
	}
	if len(cfg.Searches) != 1 || cfg.Searches[0].Query != "tag:lists" {
		t.Errorf("searches = %+v", cfg.Searches)
	}
	if c := cfg.Colors["search_view_date"]; c.Fg != "red" {
		t.Errorf("colors = %+v", cfg.Colors)
	}

	id, err := cfg.Identity()
	if err != nil {
		t.Fatalf("Identity failed: %v", err)
	}
	if id.Email != "me@work.example" || id.Drafts != "/tmp/drafts" {
		t.Errorf("identity = %+v", id)
	}

	if !cfg.IMAP.Enabled || cfg.IMAP.Port != "993" || cfg.IMAP.Mailbox != "INBOX" || !cfg.IMAP.TLS {
		t.Errorf("imap defaults not applied: %+v", cfg.IMAP)
	}
}

func TestLoadConfigRejectsUnknownSortMode(t *testing.T) {
	path := writeConfig(t, "general:\n  sort_mode: sideways\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown sort mode")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.General.SortMode = "message_id"
	cfg.Searches = []SavedSearch{{Name: "All", Query: "*"}}

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.SortOrder() != SortMessageID {
		t.Errorf("sort order = %v, want message_id", got.SortOrder())
	}
	if len(got.Searches) != 1 || got.Searches[0].Name != "All" {
		t.Errorf("searches = %+v", got.Searches)
	}
}

func TestParseSortOrder(t *testing.T) {
	for _, order := range []SortOrder{SortNewestFirst, SortOldestFirst, SortMessageID, SortUnsorted} {
		got, err := ParseSortOrder(order.String())
		if err != nil || got != order {
			t.Errorf("ParseSortOrder(%q) = %v, %v", order.String(), got, err)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"unread", "", "inbox", "unread"})
	want := []string{"inbox", "unread"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeTags = %v, want %v", got, want)
		}
	}

	s := ThreadSummary{Tags: got}
	if !s.HasTag("unread") || s.HasTag("flagged") {
		t.Error("HasTag mismatch")
	}
}
