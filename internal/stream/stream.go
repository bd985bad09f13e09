package stream

import (
	"context"
	"time"

	"github.com/lineCode/ner/internal/index"
	"github.com/lineCode/ner/internal/model"
)

// Stream owns the current Session for one query and replaces it on
// refresh. It is used from a single goroutine; only the Session it hands
// out is safe for concurrent reads.
type Stream struct {
	idx        index.Index
	query      string
	sort       model.SortOrder
	session    *Session
	generation int
}

// New returns a stream for query. No search runs until Restart.
func New(idx index.Index, query string, sort model.SortOrder) *Stream {
	return &Stream{idx: idx, query: query, sort: sort}
}

// Query returns the search terms.
func (s *Stream) Query() string { return s.query }

// Session returns the current session, nil before the first Restart.
func (s *Stream) Session() *Session { return s.session }

// Generation increases by one on every restart. Messages tagged with an
// older generation refer to a closed session.
func (s *Stream) Generation() int { return s.generation }

// Restart closes the current session, joining its worker, then starts a
// new one with the same query.
func (s *Stream) Restart(ctx context.Context) *Session {
	if s.session != nil {
		s.session.Close()
	}
	s.generation++
	s.session = NewSession(s.idx, s.query, s.sort)
	s.session.Start(ctx)
	return s.session
}

// Refresh restarts the stream and returns the new position of the thread
// selectedID, or selected clamped into the new result count.
func (s *Stream) Refresh(ctx context.Context, selectedID string, selected int) int {
	sess := s.Restart(ctx)
	return Reselect(ctx, sess, selectedID, selected, DefaultPoll)
}

// Close stops the current session and joins its worker.
func (s *Stream) Close() {
	if s.session != nil {
		s.session.Close()
	}
}

// Reselect waits on sess until the thread id appears or no more results
// can arrive. It returns the thread's position, or fallback clamped to the
// last valid index (0 when empty).
func Reselect(ctx context.Context, sess *Session, id string, fallback int, poll time.Duration) int {
	for id != "" {
		if i := sess.IndexOf(id); i >= 0 {
			return i
		}
		n, state := sess.WaitFor(ctx, sess.Len()+1, poll)
		if state != Running || ctx.Err() != nil {
			if i := sess.IndexOf(id); i >= 0 {
				return i
			}
			return clamp(fallback, n)
		}
	}
	sess.WaitFor(ctx, fallback+1, poll)
	return clamp(fallback, sess.Len())
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}
