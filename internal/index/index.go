// Package index stores message metadata and answers thread queries.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/lineCode/ner/internal/model"
)

// Results is a pull-based cursor over the threads matching a query.
// Callers must Close it.
type Results interface {
	Next() bool
	Thread() model.ThreadSummary
	Err() error
	Close() error
}

// Index is the read side used by views.
type Index interface {
	// Search returns the threads containing at least one message matching
	// query, in the given order.
	Search(ctx context.Context, query string, sort model.SortOrder) (Results, error)

	// CountMessages returns the number of messages matching query.
	CountMessages(ctx context.Context, query string) (int, error)

	// Thread loads a full conversation. Returns *NotFoundError for unknown ids.
	Thread(ctx context.Context, id string) (*model.Thread, error)

	// Message loads one message. Returns *NotFoundError for unknown ids.
	Message(ctx context.Context, id string) (*model.Message, error)

	// ModifyTags adds then removes tags on every listed message.
	ModifyTags(ctx context.Context, ids []string, add, remove []string) error
}

// Entry is a parsed message ready to be indexed.
type Entry struct {
	Message    model.Message
	InReplyTo  string
	References []string
}

// Writer is the ingest side of the index.
type Writer interface {
	// AddMessage indexes e. It reports false when the message id was
	// already known, in which case only the filename is updated.
	AddMessage(ctx context.Context, e Entry) (bool, error)

	// KnownFiles returns the set of filenames already indexed.
	KnownFiles(ctx context.Context) (map[string]bool, error)
}

// NotFoundError is returned when a thread or message id is unknown.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
