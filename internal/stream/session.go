// Package stream runs index searches in the background and exposes the
// growing result buffer to the UI.
package stream

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lineCode/ner/internal/index"
	"github.com/lineCode/ner/internal/model"
)

// DefaultPoll bounds how long a waiter sleeps between checks when no
// notification arrives.
const DefaultPoll = 50 * time.Millisecond

// State is the lifecycle of a Session.
type State int

const (
	Idle State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no more results will arrive.
func (s State) Terminal() bool {
	return s == Completed || s == Cancelled
}

// Session is a single execution of a query. Results are appended by one
// worker goroutine in production order; every read copies under the lock.
type Session struct {
	idx   index.Index
	query string
	sort  model.SortOrder

	mu      sync.Mutex
	results []model.ThreadSummary
	state   State
	err     error
	// notify is closed and replaced whenever results or state change.
	notify chan struct{}

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewSession prepares an idle session for query.
func NewSession(idx index.Index, query string, sort model.SortOrder) *Session {
	return &Session{
		idx:    idx,
		query:  query,
		sort:   sort,
		notify: make(chan struct{}),
	}
}

// Query returns the search terms.
func (s *Session) Query() string { return s.query }

// Sort returns the result order.
func (s *Session) Sort() model.SortOrder { return s.sort }

// Start spawns the worker. It panics if the session was already started.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.group != nil || s.state != Idle {
		s.mu.Unlock()
		panic("stream: session started twice")
	}
	ctx, s.cancel = context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	s.group = g
	s.state = Running
	s.broadcastLocked()
	s.mu.Unlock()

	g.Go(func() error {
		s.run(ctx)
		return nil
	})
}

func (s *Session) run(ctx context.Context) {
	res, err := s.idx.Search(ctx, s.query, s.sort)
	if err != nil {
		s.finish(ctx, err)
		return
	}
	defer res.Close()

	for ctx.Err() == nil && res.Next() {
		if !s.append(res.Thread()) {
			return
		}
		runtime.Gosched()
	}
	s.finish(ctx, res.Err())
}

// append adds one result, reporting false once the session stopped running.
func (s *Session) append(t model.ThreadSummary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return false
	}
	s.results = append(s.results, t)
	s.broadcastLocked()
	return true
}

func (s *Session) finish(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return
	}
	if ctx.Err() != nil {
		s.state = Cancelled
	} else {
		s.state = Completed
		s.err = err
	}
	s.broadcastLocked()
}

func (s *Session) broadcastLocked() {
	close(s.notify)
	s.notify = make(chan struct{})
}

// Cancel asks the worker to stop and moves the session to Cancelled.
// Waiters are woken. Cancel does not wait for the worker; see Wait.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.state.Terminal() {
		return
	}
	s.state = Cancelled
	s.broadcastLocked()
}

// Wait blocks until the worker has exited.
func (s *Session) Wait() {
	s.mu.Lock()
	g := s.group
	s.mu.Unlock()
	if g != nil {
		_ = g.Wait()
	}
}

// Close cancels the session and joins its worker. After Close returns the
// buffer is never written again.
func (s *Session) Close() {
	s.Cancel()
	s.Wait()
}

// WaitFor blocks until at least n results are buffered, the session is no
// longer running, or ctx is done. It wakes on every change and at least
// once per poll. It returns the buffered count and state it observed.
func (s *Session) WaitFor(ctx context.Context, n int, poll time.Duration) (int, State) {
	if poll <= 0 {
		poll = DefaultPoll
	}
	timer := time.NewTimer(poll)
	defer timer.Stop()

	for {
		s.mu.Lock()
		count, state, ch := len(s.results), s.state, s.notify
		s.mu.Unlock()

		if count >= n || state != Running {
			return count, state
		}

		select {
		case <-ch:
		case <-timer.C:
		case <-ctx.Done():
			return count, state
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(poll)
	}
}

// Changed returns a channel closed at the next change of results or state.
func (s *Session) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notify
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that ended the search, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Len returns the number of buffered results.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// At returns the i-th result.
func (s *Session) At(i int) (model.ThreadSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.results) {
		return model.ThreadSummary{}, false
	}
	return s.results[i], true
}

// Snapshot copies results[from:to], clamped to the buffer.
func (s *Session) Snapshot(from, to int) []model.ThreadSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	from = max(from, 0)
	to = min(to, len(s.results))
	if from >= to {
		return nil
	}
	out := make([]model.ThreadSummary, to-from)
	copy(out, s.results[from:to])
	return out
}

// IndexOf returns the position of the thread with id, or -1.
func (s *Session) IndexOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.results {
		if t.ID == id {
			return i
		}
	}
	return -1
}
