package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emersion/go-imap/v2"

	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/testutil"
)

func rawMessage(id, inReplyTo, subject string) []byte {
	s := fmt.Sprintf("From: Alice <alice@example.org>\r\nTo: bob@example.org\r\n"+
		"Subject: %s\r\nDate: Wed, 13 Mar 2024 10:00:00 +0000\r\nMessage-ID: <%s>\r\n", subject, id)
	if inReplyTo != "" {
		s += fmt.Sprintf("In-Reply-To: <%s>\r\n", inReplyTo)
	}
	return []byte(s + "\r\nbody\r\n")
}

func TestFlagTags(t *testing.T) {
	tests := []struct {
		name  string
		inNew bool
		want  []string
	}{
		{"123.abc.host", true, []string{"inbox", "unread"}},
		{"123.abc.host:2,S", false, []string{"inbox"}},
		{"123.abc.host:2,", false, []string{"inbox", "unread"}},
		{"123.abc.host:2,FRS", false, []string{"flagged", "inbox", "replied"}},
		{"123.abc.host:2,DT", false, []string{"deleted", "draft", "inbox", "unread"}},
	}
	for _, tt := range tests {
		got := FlagTags(tt.name, tt.inNew)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("FlagTags(%q, %v) = %v, want %v", tt.name, tt.inNew, got, tt.want)
		}
	}
}

func TestDeliver(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "inbox")

	path, err := Deliver(folder, []byte("x"), "k1", "")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "new" {
		t.Errorf("unflagged message delivered to %s", path)
	}

	path, err = Deliver(folder, []byte("y"), "k2", "SFS")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "cur" || filepath.Ext(path) == "" {
		t.Errorf("flagged message delivered to %s", path)
	}
	if want := ":2,FS"; path[len(path)-len(want):] != want {
		t.Errorf("info suffix of %s, want %s", path, want)
	}

	tmp, _ := os.ReadDir(filepath.Join(folder, "tmp"))
	if len(tmp) != 0 {
		t.Errorf("tmp/ not empty: %v", tmp)
	}

	keys, err := deliveredKeys(folder)
	if err != nil {
		t.Fatalf("deliveredKeys failed: %v", err)
	}
	if !keys["k1"] || !keys["k2"] || keys["k3"] {
		t.Errorf("keys = %v", keys)
	}
}

func TestMaildirSync(t *testing.T) {
	root := t.TempDir()
	inbox := filepath.Join(root, "inbox")
	lists := filepath.Join(root, "lists")

	mustDeliver(t, inbox, rawMessage("m1@x", "", "hello"), "")
	mustDeliver(t, inbox, rawMessage("m2@x", "m1@x", "Re: hello"), "S")
	mustDeliver(t, lists, rawMessage("l1@x", "", "announce"), "")
	if err := os.WriteFile(filepath.Join(inbox, "new", ".hidden"), []byte("junk"), 0o600); err != nil {
		t.Fatal(err)
	}

	idx := testutil.NewTestIndex(t)
	md := NewMaildir(root, idx)

	folders, err := md.Folders()
	if err != nil {
		t.Fatalf("Folders failed: %v", err)
	}
	if len(folders) != 2 {
		t.Errorf("folders = %v", folders)
	}

	res, err := md.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.Added != 3 || res.Failed != 0 {
		t.Errorf("result = %v", res)
	}

	ctx := context.Background()
	if n, _ := idx.CountMessages(ctx, "tag:unread"); n != 2 {
		t.Errorf("unread = %d, want 2", n)
	}
	m2, err := idx.Message(ctx, "m2@x")
	if err != nil {
		t.Fatalf("Message failed: %v", err)
	}
	m1, _ := idx.Message(ctx, "m1@x")
	if m2.ThreadID != m1.ThreadID || m2.ParentID != "m1@x" {
		t.Errorf("reply not threaded: %+v", m2)
	}
	if m1.Author != "Alice" {
		t.Errorf("author = %q", m1.Author)
	}

	again, err := md.Sync(ctx)
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if again != (Result{}) {
		t.Errorf("rescan result = %v, want nothing new", again)
	}
}

func TestMaildirSyncSkipsMalformed(t *testing.T) {
	root := t.TempDir()
	mustDeliver(t, root, []byte("\x00\x01 not a header\r\n"), "")
	mustDeliver(t, root, rawMessage("ok@x", "", "fine"), "")

	idx := testutil.NewTestIndex(t)
	res, err := NewMaildir(root, idx).Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if res.Added < 1 {
		t.Errorf("result = %v", res)
	}
	if _, err := idx.Message(context.Background(), "ok@x"); err != nil {
		t.Errorf("valid message not indexed: %v", err)
	}
}

func TestMaildirSyncHonoursContext(t *testing.T) {
	root := t.TempDir()
	mustDeliver(t, root, rawMessage("a@x", "", "a"), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMaildir(root, testutil.NewTestIndex(t)).Sync(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sync error = %v, want context.Canceled", err)
	}
}

func TestWatcherSignalsDelivery(t *testing.T) {
	root := t.TempDir()
	mustDeliver(t, root, rawMessage("a@x", "", "a"), "")

	w := NewWatcher(NewMaildir(root, testutil.NewTestIndex(t)), WithDebounce(10*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()
	if err := w.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}

	mustDeliver(t, root, rawMessage("b@x", "", "b"), "")

	select {
	case <-w.Changed():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled")
	}
}

func TestMaildirInfo(t *testing.T) {
	got := maildirInfo([]imap.Flag{imap.FlagSeen, imap.FlagAnswered, "$Junk"})
	if got != "SR" {
		t.Errorf("maildirInfo = %q, want SR", got)
	}
	if deliveryKey(7, 42) != "imap-7-42" {
		t.Errorf("deliveryKey = %q", deliveryKey(7, 42))
	}
}

func TestIMAPMissingPasswordIsAuthError(t *testing.T) {
	src := NewIMAP(model.IMAPConfig{Host: "imap.invalid", Port: "993", Username: "me"},
		func() (string, error) { return "", errors.New("not in keyring") },
		t.TempDir(), nil)
	_, err := src.Sync(context.Background())
	if !IsAuthError(err) {
		t.Errorf("Sync error = %v, want auth error", err)
	}
}

func TestResultAdd(t *testing.T) {
	r := Result{Added: 1}
	r.Add(Result{Added: 2, Skipped: 3, Failed: 4})
	if r != (Result{Added: 3, Skipped: 3, Failed: 4}) {
		t.Errorf("Add = %+v", r)
	}
}

func mustDeliver(t *testing.T, folder string, raw []byte, flags string) string {
	t.Helper()
	path, err := Deliver(folder, raw, "", flags)
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	return path
}
