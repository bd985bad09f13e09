package index

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lineCode/ner/internal/model"
)

// SQLiteIndex implements Index and Writer using a local SQLite database.
type SQLiteIndex struct {
	db *sqlx.DB
}

var (
	_ Index  = (*SQLiteIndex)(nil)
	_ Writer = (*SQLiteIndex)(nil)
)

// connParams apply to every pooled connection. Writers take the write
// lock when their transaction begins and wait for it up to the busy
// timeout, so the pollers and the UI can write concurrently.
const connParams = "_pragma=journal_mode(WAL)" +
	"&_pragma=foreign_keys(1)" +
	"&_pragma=busy_timeout(5000)" +
	"&_txlock=immediate"

// dsn appends connParams to dbPath.
func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath + "&" + connParams
	}
	return dbPath + "?" + connParams
}

// NewSQLiteIndex opens (or creates) a SQLite database at dbPath in WAL
// mode and runs any pending schema migrations.
func NewSQLiteIndex(dbPath string) (*SQLiteIndex, error) {
	db, err := sqlx.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", dbPath, err)
	}

	s := &SQLiteIndex{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteIndex) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// AddMessage indexes e, joining it to any thread it is linked to by
// reference and merging threads that it connects.
func (s *SQLiteIndex) AddMessage(ctx context.Context, e Entry) (bool, error) {
	msg := e.Message
	if msg.ID == "" {
		return false, fmt.Errorf("indexing %s: message has no id", msg.Filename)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.GetContext(ctx, &exists, "SELECT COUNT(*) FROM messages WHERE id = ?", msg.ID); err != nil {
		return false, fmt.Errorf("checking message %s: %w", msg.ID, err)
	}
	if exists > 0 {
		if msg.Filename != "" {
			if _, err := tx.ExecContext(ctx,
				"UPDATE messages SET filename = ? WHERE id = ?", msg.Filename, msg.ID,
			); err != nil {
				return false, fmt.Errorf("updating filename of %s: %w", msg.ID, err)
			}
		}
		return false, tx.Commit()
	}

	refs := references(msg.ID, e.InReplyTo, e.References)
	if msg.ParentID == "" {
		if e.InReplyTo != "" {
			msg.ParentID = e.InReplyTo
		} else if len(refs) > 0 {
			msg.ParentID = refs[len(refs)-1]
		}
	}

	linked, err := linkedThreads(ctx, tx, msg.ID, refs)
	if err != nil {
		return false, err
	}
	threadID := uuid.NewString()
	if len(linked) > 0 {
		threadID = linked[0]
	}
	msg.ThreadID = threadID

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, thread_id, parent_id, from_addr, author, to_addr, subject, date, filename)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ThreadID, msg.ParentID, msg.From, msg.Author, msg.To,
		msg.Subject, unixSeconds(msg.Date), msg.Filename,
	)
	if err != nil {
		return false, fmt.Errorf("inserting message %s: %w", msg.ID, err)
	}

	for _, ref := range refs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO message_refs (message_id, ref_id) VALUES (?, ?)", msg.ID, ref,
		); err != nil {
			return false, fmt.Errorf("recording reference of %s: %w", msg.ID, err)
		}
	}

	for _, tag := range model.NormalizeTags(msg.Tags) {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO tags (message_id, tag) VALUES (?, ?)", msg.ID, tag,
		); err != nil {
			return false, fmt.Errorf("tagging %s: %w", msg.ID, err)
		}
	}

	if len(linked) > 1 {
		query, args, err := sqlx.In(
			"UPDATE messages SET thread_id = ? WHERE thread_id IN (?)", threadID, linked[1:],
		)
		if err != nil {
			return false, fmt.Errorf("building thread merge: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return false, fmt.Errorf("merging threads into %s: %w", threadID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing message %s: %w", msg.ID, err)
	}
	return true, nil
}

// linkedThreads returns, sorted, the threads of messages that id refers to,
// that refer to id, or that share one of its references.
func linkedThreads(ctx context.Context, tx *sqlx.Tx, id string, refs []string) ([]string, error) {
	keys := append([]string{id}, refs...)
	query := `
		SELECT thread_id FROM messages WHERE id IN (?)
		UNION
		SELECT m.thread_id FROM message_refs r
		JOIN messages m ON m.id = r.message_id
		WHERE r.ref_id IN (?)`
	query, args, err := sqlx.In(query, keys, keys)
	if err != nil {
		return nil, fmt.Errorf("building thread lookup: %w", err)
	}

	var threads []string
	if err := tx.SelectContext(ctx, &threads, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("looking up threads of %s: %w", id, err)
	}
	slices.Sort(threads)
	return slices.Compact(threads), nil
}

// references returns the ids a message refers to, oldest first, without
// duplicates or the message itself.
func references(id, inReplyTo string, refs []string) []string {
	out := make([]string, 0, len(refs)+1)
	seen := map[string]bool{id: true, "": true}
	for _, r := range append(slices.Clone(refs), inReplyTo) {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// KnownFiles returns the set of filenames already indexed.
func (s *SQLiteIndex) KnownFiles(ctx context.Context) (map[string]bool, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, "SELECT filename FROM messages WHERE filename != ''"); err != nil {
		return nil, fmt.Errorf("listing indexed files: %w", err)
	}
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	return known, nil
}

// ModifyTags adds then removes tags on every message in ids.
func (s *SQLiteIndex) ModifyTags(ctx context.Context, ids []string, add, remove []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, id := range ids {
		var exists int
		if err := tx.GetContext(ctx, &exists, "SELECT COUNT(*) FROM messages WHERE id = ?", id); err != nil {
			return fmt.Errorf("checking message %s: %w", id, err)
		}
		if exists == 0 {
			return &NotFoundError{Kind: "message", ID: id}
		}

		for _, tag := range add {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO tags (message_id, tag) VALUES (?, ?)", id, tag,
			); err != nil {
				return fmt.Errorf("adding tag %s to %s: %w", tag, id, err)
			}
		}
		for _, tag := range remove {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM tags WHERE message_id = ? AND tag = ?", id, tag,
			); err != nil {
				return fmt.Errorf("removing tag %s from %s: %w", tag, id, err)
			}
		}
	}

	return tx.Commit()
}
