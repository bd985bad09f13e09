package model

import (
	"slices"
	"time"

	"github.com/lineCode/ner/internal/tree"
)

// Well-known tags.
const (
	TagUnread  = "unread"
	TagInbox   = "inbox"
	TagFlagged = "flagged"
	TagReplied = "replied"
	TagDraft   = "draft"
)

// ThreadSummary is one search hit: a conversation with at least one
// message matching the query.
type ThreadSummary struct {
	ID      string    `json:"thread"`
	Subject string    `json:"subject"`
	Authors string    `json:"authors"`
	Newest  time.Time `json:"newest"`
	Oldest  time.Time `json:"oldest"`
	Tags    []string  `json:"tags"`
	Matched int       `json:"matched"`
	Total   int       `json:"total"`
}

// HasTag reports whether any message of the thread carries tag.
func (t ThreadSummary) HasTag(tag string) bool {
	_, found := slices.BinarySearch(t.Tags, tag)
	return found
}

// CompleteMatch reports whether every message of the thread matched.
func (t ThreadSummary) CompleteMatch() bool {
	return t.Matched == t.Total
}

// Message is a single indexed mail.
type Message struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread"`
	ParentID string    `json:"parent,omitempty"`
	From     string    `json:"from"`
	Author   string    `json:"author"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Date     time.Time `json:"date"`
	Tags     []string  `json:"tags"`
	Filename string    `json:"filename"`
}

// HasTag reports whether the message carries tag.
func (m Message) HasTag(tag string) bool {
	_, found := slices.BinarySearch(m.Tags, tag)
	return found
}

// Thread is a fully materialized conversation. Top-level messages are
// those whose parent is not part of the thread.
type Thread struct {
	Summary  ThreadSummary
	Messages tree.Tree[Message]
}

// NormalizeTags sorts tags and drops duplicates and empty entries.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
