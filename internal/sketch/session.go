// Package sketch wires the gesture interpreter to sketch objects, commands and
// the undo history. A Session is the single owner of all of them.
package sketch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/arsketch/internal/command"
	"github.com/inamate/arsketch/internal/geometry"
	"github.com/inamate/arsketch/internal/gesture"
	"github.com/inamate/arsketch/internal/scene"
	"github.com/inamate/arsketch/internal/typeid"
)

// CameraPoseProvider reports the device camera pose in world space.
type CameraPoseProvider interface {
	CameraPose() (position, forward mgl64.Vec3)
}

// TrackingState reports whether the AR session is tracking the environment.
type TrackingState interface {
	SessionIsTracking() bool
}

// UIHitTester reports whether a touch is over on-screen UI.
type UIHitTester interface {
	IsPointerOverUI(touchID int) bool
}

// Environment bundles the external collaborators a session needs.
type Environment struct {
	Camera   CameraPoseProvider
	Tracking TrackingState
	UI       UIHitTester
}

// Settings are the parameters applied to every new sketch object.
type Settings struct {
	LineDiameter       float64
	InterpolationSteps int
	MinPointDistance   float64
	PointOffset        float64 // distance in front of the camera where points are placed
	RefineThreshold    int     // lines with more points than this are refined on commit
	ScreenWidth        float64
}

// DefaultSettings returns the stock sketching parameters.
func DefaultSettings() Settings {
	return Settings{
		LineDiameter:       geometry.DefaultDiameter,
		InterpolationSteps: geometry.DefaultInterpolationSteps,
		MinPointDistance:   geometry.DefaultMinimumDistance,
		PointOffset:        0.3,
		RefineThreshold:    2,
		ScreenWidth:        1080,
	}
}

// History summarizes the undo/redo stacks.
type History struct {
	Undo int `json:"undo"`
	Redo int `json:"redo"`
}

// Session turns touches into sketch objects. It is not safe for concurrent
// use: all calls must come from one interaction thread.
type Session struct {
	id       string
	settings Settings
	env      Environment
	logger   *slog.Logger

	world   *scene.World
	invoker *command.Invoker
	interp  *gesture.Interpreter

	current *geometry.Line // line being drawn, not yet committed
}

// New creates a session with an empty world and history.
func New(settings Settings, env Environment, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := typeid.NewSessionID()
	logger = logger.With("session", id)

	s := &Session{
		id:       id,
		settings: settings,
		env:      env,
		logger:   logger,
		world:    scene.NewWorld(),
		invoker:  command.NewInvoker(logger),
	}
	s.interp = gesture.NewInterpreter(s, &sink{s}, settings.ScreenWidth, logger)
	return s
}

func (s *Session) ID() string                { return s.id }
func (s *Session) World() *scene.World       { return s.world }
func (s *Session) Invoker() *command.Invoker { return s.invoker }
func (s *Session) State() gesture.State      { return s.interp.State() }
func (s *Session) Current() *geometry.Line   { return s.current }
func (s *Session) SetScreenWidth(w float64)  { s.interp.SetScreenWidth(w) }
func (s *Session) Snapshot() scene.Snapshot  { return scene.Compile(s.world, s.current) }

// History reports the current undo/redo stack depths.
func (s *Session) History() History {
	return History{Undo: s.invoker.UndoLen(), Redo: s.invoker.RedoLen()}
}

// OnTouchSample feeds one touch sample through the gesture interpreter.
// Only geometry contract violations are returned as errors.
func (s *Session) OnTouchSample(sample gesture.Sample) ([]gesture.Event, error) {
	events, err := s.interp.OnTouchSample(sample)
	if err != nil {
		s.logger.Error("touch sample failed", "touch", sample.ID, "phase", sample.Phase, "error", err)
		return events, err
	}
	return events, nil
}

// CanStart reports whether a touch may start a manipulation: the AR session
// must be tracking and the touch must not be over UI.
func (s *Session) CanStart(touchID int) bool {
	if s.env.Tracking != nil && !s.env.Tracking.SessionIsTracking() {
		return false
	}
	if s.env.UI != nil && s.env.UI.IsPointerOverUI(touchID) {
		return false
	}
	return true
}

// Undo reverts the last committed sketch object. It returns
// command.ErrNothingToUndo when there is nothing to revert.
func (s *Session) Undo() error {
	return s.invoker.Undo()
}

// Redo restores the last undone sketch object. It returns
// command.ErrNothingToRedo when there is nothing to restore.
func (s *Session) Redo() error {
	return s.invoker.Redo()
}

// nextPoint is the control point position for the current camera pose.
func (s *Session) nextPoint() mgl64.Vec3 {
	position, forward := s.env.Camera.CameraPose()
	if forward.Len() > 0 {
		forward = forward.Normalize()
	}
	return position.Add(forward.Mul(s.settings.PointOffset))
}

func (s *Session) newLine() (*geometry.Line, error) {
	line := geometry.NewLine(typeid.NewLineID())
	if err := line.Configure(s.settings.LineDiameter, s.settings.InterpolationSteps); err != nil {
		return nil, err
	}
	if err := line.SetMinimumDistance(s.settings.MinPointDistance); err != nil {
		return nil, err
	}
	return line, nil
}

// sink adapts a Session to gesture.Sink without exporting the event handlers.
type sink struct{ s *Session }

func (k *sink) BeginLine() error {
	s := k.s
	if s.current != nil {
		s.logger.Warn("discarding stale line", "line", s.current.ID())
		s.current.Destroy()
	}
	line, err := s.newLine()
	if err != nil {
		return fmt.Errorf("new line: %w", err)
	}
	s.current = line
	s.logger.Debug("line started", "line", line.ID())
	return nil
}

// ExtendLine appends directly, bypassing the invoker: undo works on whole
// sketch objects, not single points.
func (k *sink) ExtendLine() (int, error) {
	s := k.s
	if s.current == nil {
		return 0, fmt.Errorf("%w: no line in progress", geometry.ErrInvalidGeometryState)
	}
	if err := command.NewAppendControlPoint(s.current, s.nextPoint()).Execute(); err != nil {
		return s.current.PointCount(), err
	}
	return s.current.PointCount(), nil
}

func (k *sink) DiscardEmptyLine() error {
	s := k.s
	if s.current == nil {
		return nil
	}
	s.logger.Debug("line discarded", "line", s.current.ID(), "points", s.current.PointCount())
	s.current.Destroy()
	s.current = nil
	return nil
}

func (k *sink) CommitLine() error {
	s := k.s
	line := s.current
	if line == nil {
		return fmt.Errorf("%w: no line to commit", geometry.ErrInvalidGeometryState)
	}

	s.world.EnsureAnchor()
	if err := s.invoker.ExecuteCommand(command.NewAttachToRoot(line, s.world)); err != nil {
		// A line that cannot be attached is not kept.
		line.Destroy()
		s.current = nil
		return err
	}
	s.current = nil
	if line.PointCount() > s.settings.RefineThreshold {
		if err := s.invoker.ExecuteCommand(command.NewRefineMesh(line, s.logger)); err != nil {
			return err
		}
	}

	s.logger.Info("line committed", "line", line.ID(), "points", line.PointCount(), "refined", line.Refined())
	return nil
}

func (k *sink) SwipeDelete() error {
	err := k.s.invoker.Undo()
	if errors.Is(err, command.ErrNothingToUndo) {
		k.s.logger.Debug("swipe delete ignored", "reason", err)
		return nil
	}
	return err
}

func (k *sink) SwipeRestore() error {
	err := k.s.invoker.Redo()
	if errors.Is(err, command.ErrNothingToRedo) {
		k.s.logger.Debug("swipe restore ignored", "reason", err)
		return nil
	}
	return err
}
