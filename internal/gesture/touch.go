package gesture

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrUnknownPhase = errors.New("unknown touch phase")

// Phase is the lifecycle stage of a touch in one frame.
type Phase int

const (
	PhaseBegan Phase = iota
	PhaseMoved
	PhaseStationary
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseBegan:
		return "began"
	case PhaseMoved:
		return "moved"
	case PhaseStationary:
		return "stationary"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParsePhase parses the wire name of a phase.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "began":
		return PhaseBegan, nil
	case "moved":
		return PhaseMoved, nil
	case "stationary":
		return PhaseStationary, nil
	case "ended":
		return PhaseEnded, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, s)
	}
}

// Sample is one touch as observed in one frame. Positions are in screen
// pixels; RawStart is where the touch began.
type Sample struct {
	ID       int
	Phase    Phase
	Position mgl64.Vec2
	RawStart mgl64.Vec2
}

// Displacement returns the vector from the touch start to its current position.
func (s Sample) Displacement() mgl64.Vec2 {
	return s.Position.Sub(s.RawStart)
}
