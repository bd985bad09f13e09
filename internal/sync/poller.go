// Package sync runs ingest sources in the background and reports their
// results to the UI as tea messages.
package sync

import (
	"context"
	"fmt"
	"log"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/ingest"
)

// SyncState represents the current state of a source sync operation.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the sync state for a single source.
type SyncStatus struct {
	Source   string
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a sync operation completes.
type SyncResultMsg struct {
	Source    string
	Result    ingest.Result
	Error     error
	AuthError *AuthErrorMsg
}

// AuthErrorMsg is a tea.Msg sent when a source rejects its credentials.
type AuthErrorMsg struct {
	Source  string
	Message string
}

// syncTimeout is the maximum time allowed for a single sync operation.
const syncTimeout = 5 * time.Minute

// defaultInterval applies when a source is registered without one.
const defaultInterval = 120 * time.Second

// sourceEntry holds a registered source and its polling interval.
type sourceEntry struct {
	src      ingest.Source
	interval time.Duration
	trigger  chan struct{}
}

// Poller orchestrates background syncing of registered sources.
type Poller struct {
	sources  []sourceEntry
	statuses map[string]*SyncStatus
	resultCh chan SyncResultMsg
	stopCh   chan struct{}
	wg       gosync.WaitGroup
	mu       gosync.Mutex
	running  bool
}

// New creates a Poller with no sources.
func New() *Poller {
	return &Poller{
		statuses: make(map[string]*SyncStatus),
		resultCh: make(chan SyncResultMsg, 16),
		stopCh:   make(chan struct{}),
	}
}

// RegisterSource adds a source synced every interval. A zero interval
// uses the default.
func (p *Poller) RegisterSource(src ingest.Source, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if interval <= 0 {
		interval = defaultInterval
	}
	p.sources = append(p.sources, sourceEntry{
		src:      src,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	})
	p.statuses[src.Name()] = &SyncStatus{Source: src.Name(), State: SyncIdle}
}

// Start returns a tea.Cmd that starts all polling goroutines and
// subscribes to results.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	sources := append([]sourceEntry(nil), p.sources...)
	p.mu.Unlock()

	for _, entry := range sources {
		p.wg.Add(1)
		go p.pollSource(entry)
	}

	return p.waitForResult()
}

// Stop halts all polling goroutines and waits for in-flight syncs.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// RefreshAll triggers an immediate sync of all registered sources.
func (p *Poller) RefreshAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range p.sources {
		select {
		case entry.trigger <- struct{}{}:
		default:
			// Already pending.
		}
	}
}

// RefreshSource triggers an immediate sync of the named source.
func (p *Poller) RefreshSource(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range p.sources {
		if entry.src.Name() != name {
			continue
		}
		select {
		case entry.trigger <- struct{}{}:
		default:
		}
	}
}

// Follow triggers the named source whenever changed fires, until Stop.
func (p *Poller) Follow(changed <-chan struct{}, name string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-p.stopCh:
				return
			case <-changed:
				p.RefreshSource(name)
			}
		}
	}()
}

// GetStatuses returns the current sync status of all registered sources.
func (p *Poller) GetStatuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]SyncStatus, 0, len(p.sources))
	for _, entry := range p.sources {
		statuses = append(statuses, *p.statuses[entry.src.Name()])
	}
	return statuses
}

// pollSource runs the polling loop for a single source.
func (p *Poller) pollSource(entry sourceEntry) {
	defer p.wg.Done()

	ticker := time.NewTicker(entry.interval)
	defer ticker.Stop()

	// Do an initial sync immediately.
	p.syncSource(entry)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.syncSource(entry)
		case <-entry.trigger:
			p.syncSource(entry)
		}
	}
}

// syncSource performs a single sync and sends a SyncResultMsg.
func (p *Poller) syncSource(entry sourceEntry) {
	name := entry.src.Name()
	p.setStatus(name, SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()
	go func() {
		select {
		case <-p.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := entry.src.Sync(ctx)
	if err != nil {
		p.setStatus(name, SyncError, err)
		log.Printf("sync %s: %v", name, err)

		if ingest.IsAuthError(err) {
			p.sendResult(SyncResultMsg{
				Source: name,
				Result: result,
				Error:  err,
				AuthError: &AuthErrorMsg{
					Source:  name,
					Message: fmt.Sprintf("%s: authentication failed. Run 'ner set-password'.", name),
				},
			})
			return
		}

		p.sendResult(SyncResultMsg{Source: name, Result: result, Error: err})
		return
	}

	p.setStatus(name, SyncIdle, nil)
	p.sendResult(SyncResultMsg{Source: name, Result: result})
}

// setStatus updates the sync status for a source.
func (p *Poller) setStatus(name string, state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[name]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == SyncIdle && err == nil {
		status.LastSync = time.Now()
	}
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// Call it after processing a SyncResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
