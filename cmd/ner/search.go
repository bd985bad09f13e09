package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/stream"
	"github.com/lineCode/ner/internal/timeutil"
)

type searchThread struct {
	ID      string    `json:"id"`
	Subject string    `json:"subject"`
	Authors string    `json:"authors"`
	Newest  time.Time `json:"newest"`
	Matched int       `json:"matched"`
	Total   int       `json:"total"`
	Tags    []string  `json:"tags"`
}

type searchOutput struct {
	Query   string         `json:"query"`
	Sort    string         `json:"sort"`
	Count   int            `json:"count"`
	Threads []searchThread `json:"threads"`
}

func runSearch(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	configPath := configFlag(fs)
	asJSON := fs.Bool("json", false, "Print JSON instead of one line per thread")
	sortMode := fs.String("sort", "", "newest_first, oldest_first, message_id or unsorted (default: from config)")
	limit := fs.Int("limit", 0, "Print at most this many threads")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	order := cfg.SortOrder()
	if *sortMode != "" {
		if order, err = model.ParseSortOrder(*sortMode); err != nil {
			return err
		}
	}

	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sess := stream.NewSession(idx, query, order)
	sess.Start(ctx)
	defer sess.Close()

	if *limit > 0 {
		sess.WaitFor(ctx, *limit, stream.DefaultPoll)
	} else {
		sess.Wait()
	}
	if err := sess.Err(); err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}

	n := sess.Len()
	if *limit > 0 {
		n = min(n, *limit)
	}
	threads := sess.Snapshot(0, n)

	if *asJSON {
		return writeSearchJSON(w, query, order, threads)
	}
	writeSearchLines(w, threads, time.Now())
	return nil
}

func writeSearchJSON(w io.Writer, query string, order model.SortOrder, threads []model.ThreadSummary) error {
	out := searchOutput{
		Query:   query,
		Sort:    order.String(),
		Count:   len(threads),
		Threads: make([]searchThread, 0, len(threads)),
	}
	for _, t := range threads {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		out.Threads = append(out.Threads, searchThread{
			ID:      t.ID,
			Subject: t.Subject,
			Authors: t.Authors,
			Newest:  t.Newest.UTC(),
			Matched: t.Matched,
			Total:   t.Total,
			Tags:    tags,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeSearchLines(w io.Writer, threads []model.ThreadSummary, now time.Time) {
	for _, t := range threads {
		fmt.Fprintf(w, "thread:%s  %s [%d/%d] %s; %s (%s)\n",
			t.ID,
			timeutil.RelativeTime(now, t.Newest),
			t.Matched, t.Total,
			t.Authors,
			t.Subject,
			strings.Join(t.Tags, " "),
		)
	}
}
