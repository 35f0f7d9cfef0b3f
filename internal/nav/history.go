// Package nav maintains navigation history: an unbounded jump stack for
// explicit go-to-definition events and a bounded modification stack that
// tracks edit locations, collapsing contiguous edits in one area so
// "back to last modification" skips over runs of tiny edits.
package nav

import (
	"errors"
	"sync"

	"tagnav/internal/buffer"
)

// ErrEmptyHistory means there is nowhere to go back to. Callers show a
// status message, not an error dialog.
var ErrEmptyHistory = errors.New("history empty")

const (
	// DefaultModHistoryLimit caps the modification stack.
	DefaultModHistoryLimit = 100
	// DefaultModAreaThreshold is the selection-start distance under
	// which two edits in the same file share a modification area.
	DefaultModAreaThreshold = 40
)

// Entry is one recorded navigation location.
type Entry struct {
	File string
	Sel  buffer.Region
}

// History holds the two independent navigation stacks. It is safe for
// concurrent use.
type History struct {
	mu        sync.Mutex
	jumps     []Entry
	mods      []Entry
	limit     int
	threshold int
}

// New returns a History with the given modification-stack cap and
// modification-area threshold; non-positive values select the defaults.
func New(limit, threshold int) *History {
	if limit <= 0 {
		limit = DefaultModHistoryLimit
	}
	if threshold <= 0 {
		threshold = DefaultModAreaThreshold
	}
	return &History{limit: limit, threshold: threshold}
}

// RecordJump pushes the departure point of an explicit jump.
func (h *History) RecordJump(e Entry) {
	if e.File == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.jumps = append(h.jumps, e)
}

// GoBack pops and returns the most recent jump departure point.
func (h *History) GoBack() (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.jumps) == 0 {
		return Entry{}, ErrEmptyHistory
	}
	e := h.jumps[len(h.jumps)-1]
	h.jumps = h.jumps[:len(h.jumps)-1]
	return e, nil
}

// JumpCount returns the jump stack depth.
func (h *History) JumpCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.jumps)
}

// RecordModification pushes an edit location, most recent first, and
// truncates the stack to its cap.
func (h *History) RecordModification(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.mods = append([]Entry{e}, h.mods...)
	if len(h.mods) > h.limit {
		h.mods = h.mods[:h.limit]
	}
}

// ModCount returns the modification stack depth.
func (h *History) ModCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.mods)
}

// GoBackToLastModification pops the most recent edit location and
// collapses the contiguous run of edits sharing its modification area.
// current is the cursor position the query starts from: when it already
// lies inside the area, the result is the first entry beyond the area's
// boundary; otherwise it is the area's own latest entry. The landing
// entry is re-inserted at the front when the cursor came from elsewhere
// or the stack drained, so repeated calls walk backward through distinct
// edit areas.
func (h *History) GoBackToLastModification(current Entry) (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.mods) == 0 {
		return Entry{}, ErrEmptyHistory
	}

	start := h.mods[0]
	h.mods = h.mods[1:]
	if start.File == "" {
		return Entry{}, ErrEmptyHistory
	}

	inDifferentArea := h.differentArea(start, current)
	landing := start

	if len(h.mods) > 0 {
		boundary := 0
		for i, e := range h.mods {
			boundary = i
			if h.differentArea(start, e) {
				break
			}
		}
		// Drop the run inside the starting area, keeping the boundary
		// entry itself.
		landing = h.mods[boundary]
		h.mods = h.mods[boundary:]
		if inDifferentArea {
			landing = start
		}
	}

	if inDifferentArea || len(h.mods) == 0 {
		h.mods = append([]Entry{landing}, h.mods...)
	}

	return landing, nil
}

// differentArea reports whether two entries belong to different
// modification areas: different files, or selection starts further
// apart than the threshold.
func (h *History) differentArea(a, b Entry) bool {
	if a.File != b.File {
		return true
	}
	d := a.Sel.Start - b.Sel.Start
	if d < 0 {
		d = -d
	}
	return d >= h.threshold
}
