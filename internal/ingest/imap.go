package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/lineCode/ner/internal/model"
)

// PasswordFunc returns the password for the configured IMAP account.
type PasswordFunc func() (string, error)

// IMAP downloads messages from one mailbox into a local maildir folder and
// indexes them through that maildir.
type IMAP struct {
	cfg      model.IMAPConfig
	password PasswordFunc
	folder   string
	maildir  *Maildir
}

// NewIMAP returns a source that delivers into folder, which must lie
// under the root of maildir.
func NewIMAP(cfg model.IMAPConfig, password PasswordFunc, folder string, maildir *Maildir) *IMAP {
	return &IMAP{cfg: cfg, password: password, folder: folder, maildir: maildir}
}

// Name identifies the source in status messages.
func (s *IMAP) Name() string { return "imap" }

// connect establishes a connection to the IMAP server and authenticates.
// The caller is responsible for calling Logout on the returned client.
func (s *IMAP) connect() (*imapclient.Client, error) {
	password, err := s.password()
	if err != nil {
		return nil, &AuthError{
			Source:  s.Name(),
			Message: fmt.Sprintf("no password for %s: %v", s.cfg.Username, err),
		}
	}

	addr := s.cfg.Host + ":" + s.cfg.Port

	var client *imapclient.Client
	if s.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(s.cfg.Username, password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &AuthError{
			Source:  s.Name(),
			Message: fmt.Sprintf("authentication failed for %s: %v", s.cfg.Username, err),
		}
	}

	return client, nil
}

// Sync downloads recent messages not yet delivered, then indexes the
// maildir.
func (s *IMAP) Sync(ctx context.Context) (Result, error) {
	fetched, err := s.fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	if fetched > 0 {
		log.Printf("imap: delivered %d messages into %s", fetched, s.folder)
	}
	return s.maildir.Sync(ctx)
}

func (s *IMAP) fetch(ctx context.Context) (int, error) {
	client, err := s.connect()
	if err != nil {
		return 0, err
	}
	defer func() { _ = client.Logout().Wait() }()

	// Commands do not take a context; closing the connection unblocks them.
	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()

	mailbox := s.cfg.Mailbox
	selected, err := client.Select(mailbox, nil).Wait()
	if err != nil {
		return 0, fmt.Errorf("selecting %s: %w", mailbox, err)
	}

	criteria := &imap.SearchCriteria{}
	if s.cfg.SinceDays > 0 {
		criteria.Since = time.Now().AddDate(0, 0, -s.cfg.SinceDays)
	}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return 0, fmt.Errorf("searching %s: %w", mailbox, err)
	}

	delivered, err := deliveredKeys(s.folder)
	if err != nil {
		return 0, err
	}

	var pending []imap.UID
	for _, uid := range searchData.AllUIDs() {
		if !delivered[deliveryKey(selected.UIDValidity, uid)] {
			pending = append(pending, uid)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(pending...), &imap.FetchOptions{
		Flags:       true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			log.Printf("imap: collecting message: %v", err)
			continue
		}
		raw := buf.FindBodySection(bodySection)
		if raw == nil {
			continue
		}

		key := deliveryKey(selected.UIDValidity, buf.UID)
		if _, err := Deliver(s.folder, raw, key, maildirInfo(buf.Flags)); err != nil {
			return count, err
		}
		count++
	}

	if err := fetchCmd.Close(); err != nil {
		return count, fmt.Errorf("fetching messages: %w", err)
	}
	return count, nil
}

func deliveryKey(validity uint32, uid imap.UID) string {
	return fmt.Sprintf("imap-%d-%d", validity, uid)
}

var imapFlags = map[imap.Flag]rune{
	imap.FlagSeen:     'S',
	imap.FlagFlagged:  'F',
	imap.FlagAnswered: 'R',
	imap.FlagDraft:    'D',
	imap.FlagDeleted:  'T',
}

// maildirInfo converts IMAP flags to maildir info letters.
func maildirInfo(flags []imap.Flag) string {
	var b strings.Builder
	for _, f := range flags {
		if r, ok := imapFlags[f]; ok {
			b.WriteRune(r)
		}
	}
	return b.String()
}
