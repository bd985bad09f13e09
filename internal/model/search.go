package model

import "fmt"

// SortOrder controls the order in which search results are produced.
type SortOrder int

const (
	SortNewestFirst SortOrder = iota
	SortOldestFirst
	SortMessageID
	SortUnsorted
)

var sortOrderNames = map[SortOrder]string{
	SortNewestFirst: "newest_first",
	SortOldestFirst: "oldest_first",
	SortMessageID:   "message_id",
	SortUnsorted:    "unsorted",
}

// String returns the config name of the sort order.
func (s SortOrder) String() string {
	if name, ok := sortOrderNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SortOrder(%d)", int(s))
}

// ParseSortOrder converts a config name into a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	for order, name := range sortOrderNames {
		if name == s {
			return order, nil
		}
	}
	return SortNewestFirst, fmt.Errorf("unknown sort mode %q", s)
}

// SavedSearch is a named query shown in the search list.
type SavedSearch struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Query string `mapstructure:"query" yaml:"query"`
}

// DefaultSearches are used when the config file defines none.
func DefaultSearches() []SavedSearch {
	return []SavedSearch{
		{Name: "New", Query: "tag:inbox and tag:unread"},
		{Name: "Unread", Query: "tag:unread"},
		{Name: "Inbox", Query: "tag:inbox"},
	}
}
