package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/tree"
)

// listSeparator joins grouped values; it cannot occur in header text.
const listSeparator = "\x1e"

const threadSelect = `
SELECT m.thread_id AS thread_id,
	COUNT(*) AS matched,
	(SELECT COUNT(*) FROM messages a WHERE a.thread_id = m.thread_id) AS total,
	(SELECT MAX(a.date) FROM messages a WHERE a.thread_id = m.thread_id) AS newest,
	(SELECT MIN(a.date) FROM messages a WHERE a.thread_id = m.thread_id) AS oldest,
	(SELECT a.subject FROM messages a WHERE a.thread_id = m.thread_id
		ORDER BY a.date, a.id LIMIT 1) AS subject,
	(SELECT group_concat(a.author, char(30)) FROM messages a
		WHERE a.thread_id = m.thread_id) AS authors,
	(SELECT group_concat(g.tag, char(30)) FROM tags g
		JOIN messages a ON a.id = g.message_id
		WHERE a.thread_id = m.thread_id) AS tags
FROM messages m
WHERE %s
GROUP BY m.thread_id
%s`

var sortClauses = map[model.SortOrder]string{
	model.SortNewestFirst: "ORDER BY newest DESC, thread_id",
	model.SortOldestFirst: "ORDER BY oldest ASC, thread_id",
	model.SortMessageID:   "ORDER BY thread_id",
	model.SortUnsorted:    "",
}

type threadRow struct {
	ThreadID string         `db:"thread_id"`
	Matched  int            `db:"matched"`
	Total    int            `db:"total"`
	Newest   int64          `db:"newest"`
	Oldest   int64          `db:"oldest"`
	Subject  sql.NullString `db:"subject"`
	Authors  sql.NullString `db:"authors"`
	Tags     sql.NullString `db:"tags"`
}

func (r threadRow) summary() model.ThreadSummary {
	return model.ThreadSummary{
		ID:      r.ThreadID,
		Subject: r.Subject.String,
		Authors: joinAuthors(splitList(r.Authors.String)),
		Newest:  time.Unix(r.Newest, 0),
		Oldest:  time.Unix(r.Oldest, 0),
		Tags:    model.NormalizeTags(splitList(r.Tags.String)),
		Matched: r.Matched,
		Total:   r.Total,
	}
}

type messageRow struct {
	ID       string `db:"id"`
	ThreadID string `db:"thread_id"`
	ParentID string `db:"parent_id"`
	From     string `db:"from_addr"`
	Author   string `db:"author"`
	To       string `db:"to_addr"`
	Subject  string `db:"subject"`
	Date     int64  `db:"date"`
	Filename string `db:"filename"`
}

func (r messageRow) message(tags []string) model.Message {
	return model.Message{
		ID:       r.ID,
		ThreadID: r.ThreadID,
		ParentID: r.ParentID,
		From:     r.From,
		Author:   r.Author,
		To:       r.To,
		Subject:  r.Subject,
		Date:     time.Unix(r.Date, 0),
		Tags:     model.NormalizeTags(tags),
		Filename: r.Filename,
	}
}

const messageColumns = "id, thread_id, parent_id, from_addr, author, to_addr, subject, date, filename"

// sqliteResults streams thread rows as the caller pulls them.
type sqliteResults struct {
	rows *sqlx.Rows
	cur  model.ThreadSummary
	err  error
}

func (r *sqliteResults) Next() bool {
	if r.err != nil || !r.rows.Next() {
		if r.err == nil {
			r.err = r.rows.Err()
		}
		return false
	}
	var row threadRow
	if err := r.rows.StructScan(&row); err != nil {
		r.err = fmt.Errorf("scanning thread: %w", err)
		return false
	}
	r.cur = row.summary()
	return true
}

func (r *sqliteResults) Thread() model.ThreadSummary { return r.cur }

// Err returns the first error met while iterating. Cancellation of the
// search context is not reported as an error.
func (r *sqliteResults) Err() error {
	if errors.Is(r.err, context.Canceled) {
		return nil
	}
	return r.err
}

func (r *sqliteResults) Close() error { return r.rows.Close() }

// Search returns the threads with at least one message matching query.
func (s *SQLiteIndex) Search(ctx context.Context, query string, sort model.SortOrder) (Results, error) {
	cond, err := compileQuery(query)
	if err != nil {
		return nil, err
	}
	order, ok := sortClauses[sort]
	if !ok {
		return nil, fmt.Errorf("searching %q: unknown sort order %v", query, sort)
	}

	rows, err := s.db.QueryxContext(ctx, fmt.Sprintf(threadSelect, cond.sql, order), cond.args...)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	return &sqliteResults{rows: rows}, nil
}

// CountMessages returns the number of messages matching query.
func (s *SQLiteIndex) CountMessages(ctx context.Context, query string) (int, error) {
	cond, err := compileQuery(query)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM messages m WHERE "+cond.sql, cond.args...,
	); err != nil {
		return 0, fmt.Errorf("counting %q: %w", query, err)
	}
	return n, nil
}

// Message loads a single message with its tags.
func (s *SQLiteIndex) Message(ctx context.Context, id string) (*model.Message, error) {
	var row messageRow
	err := s.db.GetContext(ctx, &row, "SELECT "+messageColumns+" FROM messages WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "message", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("loading message %s: %w", id, err)
	}

	var tags []string
	if err := s.db.SelectContext(ctx, &tags,
		"SELECT tag FROM tags WHERE message_id = ? ORDER BY tag", id,
	); err != nil {
		return nil, fmt.Errorf("loading tags of %s: %w", id, err)
	}

	msg := row.message(tags)
	return &msg, nil
}

// Thread loads a conversation and arranges its messages by reply.
func (s *SQLiteIndex) Thread(ctx context.Context, id string) (*model.Thread, error) {
	var rows []messageRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT "+messageColumns+" FROM messages WHERE thread_id = ? ORDER BY date, id", id,
	); err != nil {
		return nil, fmt.Errorf("loading thread %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Kind: "thread", ID: id}
	}

	var tagRows []struct {
		MessageID string `db:"message_id"`
		Tag       string `db:"tag"`
	}
	if err := s.db.SelectContext(ctx, &tagRows, `
		SELECT g.message_id, g.tag FROM tags g
		JOIN messages a ON a.id = g.message_id
		WHERE a.thread_id = ?`, id,
	); err != nil {
		return nil, fmt.Errorf("loading tags of thread %s: %w", id, err)
	}
	tagsByID := make(map[string][]string)
	for _, t := range tagRows {
		tagsByID[t.MessageID] = append(tagsByID[t.MessageID], t.Tag)
	}

	messages := make([]model.Message, len(rows))
	for i, r := range rows {
		messages[i] = r.message(tagsByID[r.ID])
	}

	return &model.Thread{
		Summary:  summarize(id, messages),
		Messages: buildTree(messages),
	}, nil
}

// buildTree arranges messages, already in date order, under their parents.
// A message whose parent is not in the slice becomes a top-level node.
func buildTree(messages []model.Message) tree.Tree[model.Message] {
	nodes := make(map[string]*tree.Node[model.Message], len(messages))
	for _, m := range messages {
		nodes[m.ID] = tree.NewNode(m)
	}

	var roots tree.Tree[model.Message]
	for _, m := range messages {
		node := nodes[m.ID]
		if parent, ok := nodes[m.ParentID]; ok && m.ParentID != m.ID {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}

func summarize(id string, messages []model.Message) model.ThreadSummary {
	s := model.ThreadSummary{
		ID:      id,
		Subject: messages[0].Subject,
		Oldest:  messages[0].Date,
		Newest:  messages[len(messages)-1].Date,
		Matched: len(messages),
		Total:   len(messages),
	}
	var authors, tags []string
	for _, m := range messages {
		authors = append(authors, m.Author)
		tags = append(tags, m.Tags...)
	}
	s.Authors = joinAuthors(authors)
	s.Tags = model.NormalizeTags(tags)
	return s
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

// joinAuthors lists distinct non-empty authors in first-seen order.
func joinAuthors(authors []string) string {
	seen := make(map[string]bool, len(authors))
	var out []string
	for _, a := range authors {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return strings.Join(out, ", ")
}

func unixSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
