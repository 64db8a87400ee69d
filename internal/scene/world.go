// Package scene is the persistent world root that committed lines attach to.
package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/inamate/arsketch/internal/geometry"
	"github.com/inamate/arsketch/internal/typeid"
)

var (
	ErrNoAnchor        = errors.New("scene has no world anchor")
	ErrAlreadyAttached = errors.New("line already attached")
	ErrNotAttached     = errors.New("line not attached")
)

// Anchor is the persistent AR anchor all committed sketch objects hang off.
type Anchor struct {
	ID        string
	CreatedAt time.Time
}

// World is the persistent scene root. Committed lines are kept in the order
// they were attached.
type World struct {
	anchor *Anchor
	lines  []*geometry.Line
}

// NewWorld creates an empty world without an anchor.
func NewWorld() *World {
	return &World{}
}

// EnsureAnchor returns the world anchor, creating it on first use.
func (w *World) EnsureAnchor() *Anchor {
	if w.anchor == nil {
		w.anchor = &Anchor{
			ID:        typeid.NewAnchorID(),
			CreatedAt: time.Now(),
		}
	}
	return w.anchor
}

// Anchor returns the world anchor, or nil before the first commit.
func (w *World) Anchor() *Anchor {
	return w.anchor
}

// Attach parents line under the world anchor.
func (w *World) Attach(line *geometry.Line) error {
	if w.anchor == nil {
		return ErrNoAnchor
	}
	if line.Attached() {
		return fmt.Errorf("%w: %s", ErrAlreadyAttached, line.ID())
	}
	if _, err := line.Reparent(w.anchor.ID); err != nil {
		return fmt.Errorf("attach %s: %w", line.ID(), err)
	}
	w.lines = append(w.lines, line)
	return nil
}

// Detach removes line from the world and returns it to the transient state.
// The line itself is left intact.
func (w *World) Detach(line *geometry.Line) error {
	idx := w.indexOf(line)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotAttached, line.ID())
	}
	if _, err := line.Reparent(""); err != nil {
		return fmt.Errorf("detach %s: %w", line.ID(), err)
	}
	w.lines = append(w.lines[:idx], w.lines[idx+1:]...)
	return nil
}

// Contains reports whether line is attached to this world.
func (w *World) Contains(line *geometry.Line) bool {
	return w.indexOf(line) >= 0
}

// Lines returns the attached lines, oldest first.
func (w *World) Lines() []*geometry.Line {
	out := make([]*geometry.Line, len(w.lines))
	copy(out, w.lines)
	return out
}

// Len returns the number of attached lines.
func (w *World) Len() int {
	return len(w.lines)
}

func (w *World) indexOf(line *geometry.Line) int {
	for i, l := range w.lines {
		if l == line {
			return i
		}
	}
	return -1
}
