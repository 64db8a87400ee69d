//go:build js && wasm

package main

import (
	"errors"
	"syscall/js"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/arsketch/internal/command"
	"github.com/inamate/arsketch/internal/device"
	"github.com/inamate/arsketch/internal/gesture"
	"github.com/inamate/arsketch/internal/sketch"
)

var (
	dev     *device.State
	session *sketch.Session
)

func main() {
	dev = device.NewState()
	session = sketch.New(sketch.DefaultSettings(), sketch.Environment{
		Camera:   dev,
		Tracking: dev,
		UI:       dev,
	}, nil)

	arsketch := js.Global().Get("Object").New()

	// --- Device input (frontend → wasm) ---
	arsketch.Set("onTouchSample", js.FuncOf(onTouchSample))
	arsketch.Set("setCameraPose", js.FuncOf(setCameraPose))
	arsketch.Set("setTracking", js.FuncOf(setTracking))
	arsketch.Set("setPointerOverUI", js.FuncOf(setPointerOverUI))
	arsketch.Set("setScreenWidth", js.FuncOf(setScreenWidth))
	arsketch.Set("undo", js.FuncOf(undo))
	arsketch.Set("redo", js.FuncOf(redo))

	// --- Queries (frontend ← wasm) ---
	arsketch.Set("snapshot", js.FuncOf(snapshot))
	arsketch.Set("sessionId", js.FuncOf(sessionID))

	js.Global().Set("arsketch", arsketch)
	js.Global().Set("arsketchWasmReady", js.ValueOf(true))

	select {}
}

// onTouchSample(id, phase, x, y, rawX, rawY) returns {events: [...]} or {error}.
func onTouchSample(this js.Value, args []js.Value) interface{} {
	if len(args) < 6 {
		return js.ValueOf(map[string]interface{}{"error": "expected id, phase, x, y, rawX, rawY"})
	}

	phase, err := gesture.ParsePhase(args[1].String())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}

	events, err := session.OnTouchSample(gesture.Sample{
		ID:       args[0].Int(),
		Phase:    phase,
		Position: mgl64.Vec2{args[2].Float(), args[3].Float()},
		RawStart: mgl64.Vec2{args[4].Float(), args[5].Float()},
	})

	names := make([]interface{}, len(events))
	for i, e := range events {
		names[i] = string(e)
	}
	result := map[string]interface{}{"events": names}
	if err != nil {
		result["error"] = err.Error()
	}
	return js.ValueOf(result)
}

func setCameraPose(this js.Value, args []js.Value) interface{} {
	if len(args) < 6 {
		return nil
	}
	dev.SetPose(
		mgl64.Vec3{args[0].Float(), args[1].Float(), args[2].Float()},
		mgl64.Vec3{args[3].Float(), args[4].Float(), args[5].Float()},
	)
	return nil
}

func setTracking(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	dev.SetTracking(args[0].Bool())
	return nil
}

func setPointerOverUI(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	dev.SetPointerOverUI(args[0].Int(), args[1].Bool())
	return nil
}

func setScreenWidth(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Float() <= 0 {
		return nil
	}
	session.SetScreenWidth(args[0].Float())
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return historyResult(session.Undo(), command.ErrNothingToUndo)
}

func redo(this js.Value, args []js.Value) interface{} {
	return historyResult(session.Redo(), command.ErrNothingToRedo)
}

func historyResult(err, empty error) js.Value {
	if err != nil && !errors.Is(err, empty) {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	h := session.History()
	return js.ValueOf(map[string]interface{}{
		"applied": err == nil,
		"undo":    h.Undo,
		"redo":    h.Redo,
	})
}

func snapshot(this js.Value, args []js.Value) interface{} {
	data, err := session.Snapshot().JSON()
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(data)
}

func sessionID(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(session.ID())
}
