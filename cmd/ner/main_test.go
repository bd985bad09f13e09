package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/lineCode/ner/internal/index"
	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/testutil"
)

// seededConfig writes a config whose index holds three threads and
// returns its path.
func seededConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "index.db")

	idx, err := index.NewSQLiteIndex(dbPath)
	if err != nil {
		t.Fatalf("creating index: %v", err)
	}
	testutil.Seed(t, idx,
		testutil.Fixture{ID: "a", Subject: "Alpha", Age: 10 * time.Minute, Tags: []string{"inbox", "unread"}},
		testutil.Fixture{ID: "b", Subject: "Beta", Age: time.Hour, Author: "Bob", Tags: []string{"inbox"}},
		testutil.Fixture{ID: "c", Parent: "b", Subject: "Re: Beta", Age: 30 * time.Minute, Author: "Carol"},
		testutil.Fixture{ID: "d", Subject: "Gamma", Age: 30 * time.Hour, Tags: []string{"lists"}},
	)
	if err := idx.Close(); err != nil {
		t.Fatalf("closing index: %v", err)
	}

	path := filepath.Join(dir, "config.yaml")
	body := "database: " + dbPath + "\nmaildir: " + filepath.Join(dir, "Mail") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestRunSearchJSON(t *testing.T) {
	cfg := seededConfig(t)

	var buf bytes.Buffer
	if err := runSearch([]string{"--config", cfg, "--json", "tag:inbox"}, &buf); err != nil {
		t.Fatalf("runSearch failed: %v", err)
	}

	var out searchOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", buf.String(), err)
	}
	if out.Query != "tag:inbox" || out.Sort != "newest_first" {
		t.Errorf("header = %+v", out)
	}
	if out.Count != 2 || len(out.Threads) != 2 {
		t.Fatalf("threads = %+v", out.Threads)
	}
	if out.Threads[0].Subject != "Alpha" || out.Threads[1].Subject != "Beta" {
		t.Errorf("order = %q, %q", out.Threads[0].Subject, out.Threads[1].Subject)
	}
	if out.Threads[1].Matched != 1 || out.Threads[1].Total != 2 {
		t.Errorf("counts = %d/%d, want 1/2", out.Threads[1].Matched, out.Threads[1].Total)
	}
}

func TestRunSearchSortAndLimit(t *testing.T) {
	cfg := seededConfig(t)

	var buf bytes.Buffer
	err := runSearch([]string{"--config", cfg, "--json", "--sort", "oldest_first", "--limit", "1", "*"}, &buf)
	if err != nil {
		t.Fatalf("runSearch failed: %v", err)
	}
	var out searchOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if out.Count != 1 || out.Threads[0].Subject != "Gamma" {
		t.Errorf("threads = %+v", out.Threads)
	}
}

func TestRunSearchErrors(t *testing.T) {
	cfg := seededConfig(t)

	if err := runSearch([]string{"--config", cfg, "--sort", "sideways", "x"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown sort mode")
	}
	if err := runSearch([]string{"--config", cfg}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestWriteSearchLines(t *testing.T) {
	threads := []model.ThreadSummary{{
		ID:      "t1",
		Subject: "Alpha",
		Authors: "Alice, Bob",
		Newest:  testutil.Epoch.Add(-5 * time.Minute),
		Matched: 1,
		Total:   3,
		Tags:    []string{"inbox", "unread"},
	}}

	var buf bytes.Buffer
	writeSearchLines(&buf, threads, testutil.Epoch)

	want := "thread:t1  5 mins. ago [1/3] Alice, Bob; Alpha (inbox unread)\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := runInitConfig([]string{"--config", path}); err != nil {
		t.Fatalf("runInitConfig failed: %v", err)
	}
	if _, err := model.LoadConfig(path); err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	err := runInitConfig([]string{"--config", path})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second run err = %v, want already exists", err)
	}
	if err := runInitConfig([]string{"--config", path, "--force"}); err != nil {
		t.Errorf("--force failed: %v", err)
	}
}

func TestSetPasswordNeedsAccount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("imap:\n  enabled: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runSetPassword([]string{"--config", path}, strings.NewReader("secret\n")); err == nil {
		t.Error("expected error without host and username")
	}
}
