package app

import (
	"context"
	"log"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/credential"
	"github.com/lineCode/ner/internal/index"
	"github.com/lineCode/ner/internal/ingest"
	"github.com/lineCode/ner/internal/model"
	appsync "github.com/lineCode/ner/internal/sync"
)

// sourcesRegisteredMsg is sent when all configured sources have been
// registered with the poller.
type sourcesRegisteredMsg struct {
	count   int
	watcher *ingest.Watcher
}

// Sources builds the ingest sources the config enables: the local maildir
// always, and the IMAP account when enabled. The maildir is also returned
// on its own for watching.
func Sources(cfg *model.AppConfig, w index.Writer) (*ingest.Maildir, []ingest.Source) {
	md := ingest.NewMaildir(cfg.Maildir, w)
	sources := []ingest.Source{md}

	if cfg.IMAP.Enabled {
		if cfg.IMAP.Host == "" || cfg.IMAP.Username == "" {
			log.Printf("skipping IMAP source: host and username are required")
		} else {
			folder := filepath.Join(cfg.Maildir, cfg.IMAP.Mailbox)
			password := credential.IMAPPassword(credential.Account{Username: cfg.IMAP.Username, Host: cfg.IMAP.Host})
			sources = append(sources, ingest.NewIMAP(cfg.IMAP, password, folder, md))
		}
	}
	return md, sources
}

// registerSources registers every configured source with the poller and
// starts watching the maildir for deliveries.
func registerSources(ctx context.Context, cfg *model.AppConfig, w index.Writer, p *appsync.Poller) tea.Cmd {
	return func() tea.Msg {
		md, sources := Sources(cfg, w)
		for _, src := range sources {
			var interval time.Duration
			if src.Name() == "imap" {
				interval = time.Duration(cfg.IMAP.PollIntervalSec) * time.Second
			}
			p.RegisterSource(src, interval)
		}

		watcher := ingest.NewWatcher(md, ingest.WithOnError(func(err error) {
			log.Printf("watching %s: %v", md.Root(), err)
		}))
		if err := watcher.Start(ctx); err != nil {
			log.Printf("not watching %s: %v", md.Root(), err)
			watcher = nil
		}

		return sourcesRegisteredMsg{count: len(sources), watcher: watcher}
	}
}
