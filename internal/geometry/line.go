// Package geometry holds sketch polylines and the meshes generated from them.
package geometry

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrInvalidGeometryState = errors.New("invalid geometry state")
	ErrUseAfterDestroy      = fmt.Errorf("%w: line used after destroy", ErrInvalidGeometryState)
)

const (
	DefaultDiameter           = 0.02
	DefaultInterpolationSteps = 5
	DefaultMinimumDistance    = 0.02
)

// Line is a single polyline sketch object. Control points are in world space.
// A line is not safe for concurrent use; the owning session serializes access.
type Line struct {
	id                 string
	points             []mgl64.Vec3
	diameter           float64
	interpolationSteps int
	minimumDistance    float64
	parent             string // anchor ID when attached to the scene root

	mesh      *Mesh // cached, rebuilt lazily after mutation
	refined   bool
	destroyed bool
}

// NewLine creates an empty line with default rendering parameters.
func NewLine(id string) *Line {
	return &Line{
		id:                 id,
		diameter:           DefaultDiameter,
		interpolationSteps: DefaultInterpolationSteps,
		minimumDistance:    DefaultMinimumDistance,
	}
}

func (l *Line) ID() string { return l.id }

// Configure sets the diameter and interpolation steps. Once the first point
// has been appended only an identical reapply is accepted.
func (l *Line) Configure(diameter float64, interpolationSteps int) error {
	if l.destroyed {
		return ErrUseAfterDestroy
	}
	if diameter <= 0 || interpolationSteps <= 0 {
		return fmt.Errorf("%w: diameter %v and interpolation steps %d must be positive",
			ErrInvalidGeometryState, diameter, interpolationSteps)
	}
	if len(l.points) > 0 && (diameter != l.diameter || interpolationSteps != l.interpolationSteps) {
		return fmt.Errorf("%w: cannot reconfigure line %s after points were added", ErrInvalidGeometryState, l.id)
	}
	l.diameter = diameter
	l.interpolationSteps = interpolationSteps
	l.mesh = nil
	return nil
}

// SetMinimumDistance sets the spacing below which appended points are dropped.
func (l *Line) SetMinimumDistance(d float64) error {
	if l.destroyed {
		return ErrUseAfterDestroy
	}
	if d < 0 {
		return fmt.Errorf("%w: negative minimum distance %v", ErrInvalidGeometryState, d)
	}
	l.minimumDistance = d
	return nil
}

// AppendPoint adds a control point to the end of the line. Points closer than
// the minimum distance to the current last point are ignored and reported
// with appended == false.
func (l *Line) AppendPoint(p mgl64.Vec3) (bool, error) {
	if l.destroyed {
		return false, ErrUseAfterDestroy
	}
	if n := len(l.points); n > 0 && l.points[n-1].Sub(p).Len() < l.minimumDistance {
		return false, nil
	}
	l.points = append(l.points, p)
	l.mesh = nil
	return true, nil
}

// RemoveLastPoint removes and returns the last control point.
func (l *Line) RemoveLastPoint() (mgl64.Vec3, error) {
	if l.destroyed {
		return mgl64.Vec3{}, ErrUseAfterDestroy
	}
	n := len(l.points)
	if n == 0 {
		return mgl64.Vec3{}, fmt.Errorf("%w: line %s has no control points", ErrInvalidGeometryState, l.id)
	}
	p := l.points[n-1]
	l.points = l.points[:n-1]
	l.mesh = nil
	return p, nil
}

// PointCount returns the number of control points. A destroyed line has none.
func (l *Line) PointCount() int {
	return len(l.points)
}

// Points returns a copy of the control points.
func (l *Line) Points() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(l.points))
	copy(out, l.points)
	return out
}

func (l *Line) Diameter() float64        { return l.diameter }
func (l *Line) InterpolationSteps() int  { return l.interpolationSteps }
func (l *Line) MinimumDistance() float64 { return l.minimumDistance }
func (l *Line) Refined() bool            { return l.refined }
func (l *Line) Destroyed() bool          { return l.destroyed }

// Parent returns the ID of the anchor the line is attached to, or "" while
// the line is transient.
func (l *Line) Parent() string { return l.parent }

// Attached reports whether the line is part of the persistent scene.
func (l *Line) Attached() bool { return l.parent != "" }

// Reparent sets the parent anchor ID ("" detaches) and returns the previous one.
func (l *Line) Reparent(parent string) (string, error) {
	if l.destroyed {
		return "", ErrUseAfterDestroy
	}
	previous := l.parent
	l.parent = parent
	return previous, nil
}

// Interpolated returns the Catmull-Rom polyline through the control points.
func (l *Line) Interpolated() []mgl64.Vec3 {
	return CatmullRom(l.points, l.interpolationSteps)
}

// Mesh returns the tube mesh for the current control points.
func (l *Line) Mesh() *Mesh {
	if l.mesh == nil {
		steps := l.interpolationSteps
		if l.refined {
			steps *= 2
		}
		l.mesh = TubeMesh(CatmullRom(l.points, steps), l.diameter/2)
	}
	return l.mesh
}

// RefineMesh bakes the line: control points are simplified and the mesh is
// regenerated at a higher interpolation density. The original control points
// are discarded, so the operation cannot be reverted.
func (l *Line) RefineMesh() error {
	if l.destroyed {
		return ErrUseAfterDestroy
	}
	l.points = Simplify(l.points, l.diameter/4)
	l.refined = true
	l.mesh = nil
	return nil
}

// Destroy releases the line's resources. Any later mutation fails with
// ErrUseAfterDestroy.
func (l *Line) Destroy() {
	l.points = nil
	l.mesh = nil
	l.parent = ""
	l.destroyed = true
}
