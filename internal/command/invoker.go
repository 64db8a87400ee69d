package command

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Action identifies the history transition reported to listeners.
type Action string

const (
	ActionExecute Action = "execute"
	ActionUndo    Action = "undo"
	ActionRedo    Action = "redo"
)

// Listener is called after every successful transition.
type Listener func(action Action, cmd Command)

// Invoker executes commands and keeps a strictly linear undo/redo history.
// It is not safe for concurrent use; callers serialize access.
type Invoker struct {
	undoStack []Command // executed, most recent last
	redoStack []Command // undone, most recent last
	listeners []Listener
	logger    *slog.Logger
}

// NewInvoker creates an invoker with empty history.
func NewInvoker(logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{logger: logger}
}

// OnChange registers a listener for history transitions.
func (inv *Invoker) OnChange(fn Listener) {
	inv.listeners = append(inv.listeners, fn)
}

// ExecuteCommand runs cmd and records it. A new command invalidates the redo
// history. Commands that are not undoable run but are never recorded, so they
// leave both stacks untouched.
func (inv *Invoker) ExecuteCommand(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("execute %s: %w", cmd.Name(), err)
	}

	if !cmd.Undoable() {
		inv.logger.Debug("command excluded from history", "command", cmd.Name(), "id", cmd.ID())
	} else {
		inv.undoStack = append(inv.undoStack, cmd)
		inv.redoStack = nil
	}

	inv.notify(ActionExecute, cmd)
	return nil
}

// Undo reverts the most recently executed command. It returns
// ErrNothingToUndo when the history is empty. If the command fails to undo it
// stays on the undo stack.
func (inv *Invoker) Undo() error {
	n := len(inv.undoStack)
	if n == 0 {
		return ErrNothingToUndo
	}

	cmd := inv.undoStack[n-1]
	if err := cmd.Undo(); err != nil {
		return fmt.Errorf("undo %s: %w", cmd.Name(), err)
	}

	inv.undoStack = inv.undoStack[:n-1]
	inv.redoStack = append(inv.redoStack, cmd)
	inv.notify(ActionUndo, cmd)
	return nil
}

// Redo re-executes the most recently undone command. It returns
// ErrNothingToRedo when there is nothing to redo.
func (inv *Invoker) Redo() error {
	n := len(inv.redoStack)
	if n == 0 {
		return ErrNothingToRedo
	}

	cmd := inv.redoStack[n-1]
	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("redo %s: %w", cmd.Name(), err)
	}

	inv.redoStack = inv.redoStack[:n-1]
	inv.undoStack = append(inv.undoStack, cmd)
	inv.notify(ActionRedo, cmd)
	return nil
}

func (inv *Invoker) CanUndo() bool { return len(inv.undoStack) > 0 }
func (inv *Invoker) CanRedo() bool { return len(inv.redoStack) > 0 }
func (inv *Invoker) UndoLen() int  { return len(inv.undoStack) }
func (inv *Invoker) RedoLen() int  { return len(inv.redoStack) }

// Clear drops the whole history without touching any geometry.
func (inv *Invoker) Clear() {
	inv.undoStack = nil
	inv.redoStack = nil
}

func (inv *Invoker) notify(action Action, cmd Command) {
	for _, fn := range inv.listeners {
		fn(action, cmd)
	}
}
