// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lineCode/ner/internal/index"
	"github.com/lineCode/ner/internal/model"
)

// NewTestIndex creates a SQLiteIndex in a temporary directory with all
// migrations applied. It automatically closes the index when the test
// completes.
func NewTestIndex(t testing.TB) *index.SQLiteIndex {
	t.Helper()

	idx, err := index.NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("creating test index: %v", err)
	}

	t.Cleanup(func() {
		if err := idx.Close(); err != nil {
			t.Errorf("closing test index: %v", err)
		}
	})

	return idx
}

// Fixture describes a message to seed into a test index.
type Fixture struct {
	ID      string
	Parent  string
	Author  string
	Subject string
	Age     time.Duration
	Tags    []string
}

// Epoch is the reference "now" fixture ages are measured from.
var Epoch = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

// Seed adds fixtures to idx in order and fails the test on error.
func Seed(t testing.TB, idx index.Writer, fixtures ...Fixture) {
	t.Helper()

	for _, f := range fixtures {
		author := f.Author
		if author == "" {
			author = "Alice"
		}
		entry := index.Entry{
			Message: model.Message{
				ID:       f.ID,
				From:     author + " <" + f.ID + "@example.org>",
				Author:   author,
				To:       "list@example.org",
				Subject:  f.Subject,
				Date:     Epoch.Add(-f.Age),
				Tags:     f.Tags,
				Filename: "/maildir/cur/" + f.ID,
			},
			InReplyTo: f.Parent,
		}
		if _, err := idx.AddMessage(context.Background(), entry); err != nil {
			t.Fatalf("seeding %s: %v", f.ID, err)
		}
	}
}
