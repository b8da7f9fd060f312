// Package tui provides a Bubble Tea terminal UI for the questvars dialogue
// player.
package tui

import "strings"

// History keeps submitted lines for Up/Down recall and Tab completion.
type History struct {
	entries []string
	max     int
	cursor  int // -1 while editing fresh input
}

// NewHistory creates a history holding at most max lines.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push records a line. Blank lines and repeats of the newest entry are
// dropped; the oldest entry is evicted when full.
func (h *History) Push(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == line {
		return
	}
	if len(h.entries) == h.max {
		h.entries = append(h.entries[:0], h.entries[1:]...)
	}
	h.entries = append(h.entries, line)
}

// Prev moves toward older entries and stops at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves toward newer entries. It reports false once it passes the
// newest entry, meaning the input should be cleared.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor returns to fresh input.
func (h *History) ResetCursor() {
	h.cursor = -1
}

// Complete returns the newest entry, or failing that the first of extra,
// that extends prefix.
func (h *History) Complete(prefix string, extra []string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		if e := h.entries[i]; e != prefix && strings.HasPrefix(e, prefix) {
			return e, true
		}
	}
	for _, e := range extra {
		if e != prefix && strings.HasPrefix(e, prefix) {
			return e, true
		}
	}
	return "", false
}
