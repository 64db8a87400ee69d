// Package gesture turns a raw single-finger touch stream into sketching
// events: drawing a new line, extending it, discarding it, committing it, and
// the left/right swipes that undo and redo whole sketch objects.
package gesture

import (
	"fmt"
	"log/slog"
)

const (
	// SwipeFraction is the share of the screen width a release must be
	// displaced from its start, strictly, to count as a swipe.
	SwipeFraction = 0.05

	// MinCommitPoints is the smallest line that is committed instead of
	// discarded as degenerate.
	MinCommitPoints = 2
)

// State is the interpreter's gesture state.
type State int

const (
	StateIdle State = iota
	StateArmedNewObject
	StateExtending
	StateResolvingEnd
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmedNewObject:
		return "armed"
	case StateExtending:
		return "extending"
	case StateResolvingEnd:
		return "resolving_end"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is a high-level sketching event produced from touches.
type Event string

const (
	EventBeginLine        Event = "begin_line"
	EventExtendLine       Event = "extend_line"
	EventDiscardEmptyLine Event = "discard_empty_line"
	EventSwipeDelete      Event = "swipe_delete"
	EventSwipeRestore     Event = "swipe_restore"
	EventCommitLine       Event = "commit_line"
)

// Gate decides whether a touch may start a manipulation.
type Gate interface {
	CanStart(touchID int) bool
}

// Sink carries out the events. ExtendLine returns the line's control point
// count after the attempted append.
type Sink interface {
	BeginLine() error
	ExtendLine() (int, error)
	DiscardEmptyLine() error
	CommitLine() error
	SwipeDelete() error
	SwipeRestore() error
}

// Interpreter is the per-touch gesture state machine. It follows one touch at
// a time and is driven synchronously through OnTouchSample.
type Interpreter struct {
	gate        Gate
	sink        Sink
	screenWidth float64
	logger      *slog.Logger

	state   State
	touchID int
	created bool // a line was begun during this gesture
	points  int
	last    Sample

	gated   bool // the current touch failed the gate and is ignored
	gatedID int
}

// NewInterpreter creates an idle interpreter.
func NewInterpreter(gate Gate, sink Sink, screenWidth float64, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{
		gate:        gate,
		sink:        sink,
		screenWidth: screenWidth,
		logger:      logger,
	}
}

func (in *Interpreter) State() State { return in.state }

// SetScreenWidth updates the width the swipe threshold is relative to.
func (in *Interpreter) SetScreenWidth(w float64) { in.screenWidth = w }

func (in *Interpreter) ScreenWidth() float64 { return in.screenWidth }

// SwipeThreshold returns the displacement a swipe must exceed, in pixels.
func (in *Interpreter) SwipeThreshold() float64 { return in.screenWidth * SwipeFraction }

// OnTouchSample advances the state machine by one sample and returns the
// events it produced, in order. Errors come from the sink and leave the
// interpreter idle.
func (in *Interpreter) OnTouchSample(s Sample) ([]Event, error) {
	var events []Event
	var err error

	switch s.Phase {
	case PhaseBegan:
		events, err = in.began(s)
	case PhaseMoved, PhaseStationary:
		events, err = in.moved(s)
	case PhaseEnded:
		events, err = in.ended(s)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPhase, int(s.Phase))
	}

	if err != nil {
		in.reset()
		return events, err
	}
	return events, nil
}

func (in *Interpreter) began(s Sample) ([]Event, error) {
	var events []Event
	if in.state != StateIdle {
		// The previous touch never reported Ended; settle it where it was last seen.
		in.logger.Debug("touch began before previous touch ended", "previous", in.touchID, "touch", s.ID)
		stale, err := in.resolve(in.last)
		events = append(events, stale...)
		if err != nil {
			return events, err
		}
	}

	in.gated = false
	if !in.gate.CanStart(s.ID) {
		in.gated = true
		in.gatedID = s.ID
		in.logger.Info("not starting touch manipulation", "touch", s.ID)
		return events, nil
	}

	in.state = StateArmedNewObject
	in.touchID = s.ID
	in.created = false
	in.points = 0
	in.last = s
	return events, nil
}

func (in *Interpreter) moved(s Sample) ([]Event, error) {
	if in.state == StateIdle || s.ID != in.touchID {
		return nil, nil
	}
	in.last = s

	var events []Event
	if in.state == StateArmedNewObject {
		if err := in.sink.BeginLine(); err != nil {
			return events, fmt.Errorf("begin line: %w", err)
		}
		in.created = true
		in.state = StateExtending
		events = append(events, EventBeginLine)
	}

	n, err := in.sink.ExtendLine()
	if err != nil {
		return events, fmt.Errorf("extend line: %w", err)
	}
	if n > in.points {
		events = append(events, EventExtendLine)
	}
	in.points = n
	return events, nil
}

func (in *Interpreter) ended(s Sample) ([]Event, error) {
	if in.state == StateIdle {
		if in.gated && s.ID == in.gatedID {
			in.gated = false
		}
		return nil, nil
	}
	if s.ID != in.touchID {
		return nil, nil
	}
	return in.resolve(s)
}

// resolve finishes the current gesture using s as the release sample. A line
// with fewer than MinCommitPoints points is discarded, and only then is the
// release checked for a swipe.
func (in *Interpreter) resolve(s Sample) ([]Event, error) {
	in.state = StateResolvingEnd
	defer in.reset()

	if in.created && in.points >= MinCommitPoints {
		if err := in.sink.CommitLine(); err != nil {
			return nil, fmt.Errorf("commit line: %w", err)
		}
		return []Event{EventCommitLine}, nil
	}

	events := []Event{EventDiscardEmptyLine}
	if err := in.sink.DiscardEmptyLine(); err != nil {
		return events, fmt.Errorf("discard line: %w", err)
	}

	d := s.Displacement()
	if d.Len() <= in.SwipeThreshold() {
		return events, nil
	}
	switch {
	case d.X() < 0:
		events = append(events, EventSwipeDelete)
		if err := in.sink.SwipeDelete(); err != nil {
			return events, fmt.Errorf("swipe delete: %w", err)
		}
	case d.X() > 0:
		events = append(events, EventSwipeRestore)
		if err := in.sink.SwipeRestore(); err != nil {
			return events, fmt.Errorf("swipe restore: %w", err)
		}
	}
	return events, nil
}

func (in *Interpreter) reset() {
	in.state = StateIdle
	in.created = false
	in.points = 0
}
