// Package ingest brings new mail into the index: maildir scanning, IMAP
// download into a maildir, and a filesystem watcher.
package ingest

import (
	"context"
	"errors"
	"fmt"
)

// Result counts the outcome of one sync.
type Result struct {
	Added   int
	Skipped int
	Failed  int
}

// Add accumulates other into r.
func (r *Result) Add(other Result) {
	r.Added += other.Added
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

func (r Result) String() string {
	return fmt.Sprintf("%d added, %d already indexed, %d failed", r.Added, r.Skipped, r.Failed)
}

// Source is something that can be synced into the index.
type Source interface {
	Name() string
	Sync(ctx context.Context) (Result, error)
}

// AuthError indicates that a remote source rejected its credentials or
// has none configured.
type AuthError struct {
	Source  string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Source, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
