// Package command implements the reversible edits applied to sketch objects
// and the invoker that keeps their undo/redo history.
package command

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/arsketch/internal/geometry"
	"github.com/inamate/arsketch/internal/scene"
	"github.com/inamate/arsketch/internal/typeid"
)

// Command is a unit of work over sketch geometry. Execute and Undo are each
// called exactly once per transition. Undo restores all observable state to
// what it was before the matching Execute.
type Command interface {
	ID() string
	Name() string
	Execute() error
	Undo() error
	// Undoable is false for commands whose effect cannot be reverted. The
	// invoker keeps those out of the history.
	Undoable() bool
}

const (
	NameAppendControlPoint = "append_control_point"
	NameAttachToRoot       = "attach_to_root"
	NameRefineMesh         = "refine_mesh"
)

// --- AppendControlPoint ---

// AppendControlPoint adds one control point to a line.
type AppendControlPoint struct {
	id       string
	line     *geometry.Line
	point    mgl64.Vec3
	appended bool // false when the spacing policy dropped the point
}

func NewAppendControlPoint(line *geometry.Line, point mgl64.Vec3) *AppendControlPoint {
	return &AppendControlPoint{id: typeid.NewCommandID(), line: line, point: point}
}

func (c *AppendControlPoint) ID() string        { return c.id }
func (c *AppendControlPoint) Name() string      { return NameAppendControlPoint }
func (c *AppendControlPoint) Undoable() bool    { return true }
func (c *AppendControlPoint) Point() mgl64.Vec3 { return c.point }

// Appended reports whether the last Execute actually added the point.
func (c *AppendControlPoint) Appended() bool { return c.appended }

func (c *AppendControlPoint) Execute() error {
	ok, err := c.line.AppendPoint(c.point)
	if err != nil {
		return fmt.Errorf("append control point to %s: %w", c.line.ID(), err)
	}
	c.appended = ok
	return nil
}

func (c *AppendControlPoint) Undo() error {
	if !c.appended {
		return nil
	}
	removed, err := c.line.RemoveLastPoint()
	if err != nil {
		return fmt.Errorf("undo append on %s: %w", c.line.ID(), err)
	}
	if removed != c.point {
		return fmt.Errorf("%w: undo append on %s removed %v, expected %v",
			geometry.ErrInvalidGeometryState, c.line.ID(), removed, c.point)
	}
	c.appended = false
	return nil
}

// --- AttachToRoot ---

// AttachToRoot commits a line to the persistent scene root.
type AttachToRoot struct {
	id   string
	line *geometry.Line
	root *scene.World
}

func NewAttachToRoot(line *geometry.Line, root *scene.World) *AttachToRoot {
	return &AttachToRoot{id: typeid.NewCommandID(), line: line, root: root}
}

func (c *AttachToRoot) ID() string           { return c.id }
func (c *AttachToRoot) Name() string         { return NameAttachToRoot }
func (c *AttachToRoot) Undoable() bool       { return true }
func (c *AttachToRoot) Line() *geometry.Line { return c.line }

func (c *AttachToRoot) Execute() error {
	if err := c.root.Attach(c.line); err != nil {
		return fmt.Errorf("attach to root: %w", err)
	}
	return nil
}

// Undo detaches the line. The line is not destroyed so Redo can re-attach it.
func (c *AttachToRoot) Undo() error {
	if err := c.root.Detach(c.line); err != nil {
		return fmt.Errorf("detach from root: %w", err)
	}
	return nil
}

// --- RefineMesh ---

// RefineMesh bakes a line's mesh. Baking discards the original control
// points, so this command cannot be undone.
type RefineMesh struct {
	id     string
	line   *geometry.Line
	logger *slog.Logger
}

func NewRefineMesh(line *geometry.Line, logger *slog.Logger) *RefineMesh {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefineMesh{id: typeid.NewCommandID(), line: line, logger: logger}
}

func (c *RefineMesh) ID() string     { return c.id }
func (c *RefineMesh) Name() string   { return NameRefineMesh }
func (c *RefineMesh) Undoable() bool { return false }

func (c *RefineMesh) Execute() error {
	if err := c.line.RefineMesh(); err != nil {
		return fmt.Errorf("refine mesh of %s: %w", c.line.ID(), err)
	}
	return nil
}

// Undo is a no-op; it logs so the skipped inversion is visible.
func (c *RefineMesh) Undo() error {
	c.logger.Warn("refine mesh cannot be undone", "command", c.id, "line", c.line.ID())
	return nil
}
