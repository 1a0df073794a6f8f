package models

import (
	"time"

	"github.com/julianstephens/studyplan/internal/constants"
)

// HistoryKind classifies a history entry.
type HistoryKind string

const (
	HistoryProfile HistoryKind = "profile"
	HistoryNote    HistoryKind = "note"
	HistoryWarning HistoryKind = "warning"
	HistoryPrompt  HistoryKind = "prompt"
)

// HistoryEntry records a profile submission or planning note.
type HistoryEntry struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Kind      HistoryKind `json:"kind"`
	Text      string      `json:"text"`
}

// History is a bounded, oldest-first log. Appending past the capacity evicts
// the oldest entries.
type History struct {
	capacity int
	entries  []HistoryEntry
}

// NewHistory returns an empty history holding at most capacity entries.
// A non-positive capacity uses constants.HistoryMax.
func NewHistory(capacity int, entries ...HistoryEntry) *History {
	if capacity <= 0 {
		capacity = constants.HistoryMax
	}
	h := &History{capacity: capacity, entries: make([]HistoryEntry, 0, capacity)}
	for _, e := range entries {
		h.Append(e)
	}
	return h
}

// Append adds e and returns the entries evicted to make room, if any.
func (h *History) Append(e HistoryEntry) []HistoryEntry {
	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.capacity; over > 0 {
		evicted := append([]HistoryEntry(nil), h.entries[:over]...)
		h.entries = append(h.entries[:0:0], h.entries[over:]...)
		return evicted
	}
	return nil
}

// Entries returns a copy of the retained entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}
