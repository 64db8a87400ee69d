package scene

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/arsketch/internal/geometry"
)

// LineState is the render-ready state of one sketch object.
// The renderer receives a list of these and rebuilds its meshes from them.
type LineState struct {
	ID                 string       `json:"id"`
	Points             [][3]float64 `json:"points"`             // control points
	Path               [][3]float64 `json:"path,omitempty"`     // interpolated polyline
	Diameter           float64      `json:"diameter"`           // tube diameter in meters
	InterpolationSteps int          `json:"interpolationSteps"` // samples per segment
	Refined            bool         `json:"refined"`            // mesh has been baked
	VertexCount        int          `json:"vertexCount"`
	TriangleCount      int          `json:"triangleCount"`
	Attached           bool         `json:"attached"`
	Parent             string       `json:"parent,omitempty"` // anchor ID
}

// Snapshot is the render-ready state of the whole sketch.
type Snapshot struct {
	AnchorID string      `json:"anchorId,omitempty"`
	Lines    []LineState `json:"lines"`
	Active   *LineState  `json:"active,omitempty"` // line currently being drawn
}

// Compile generates a snapshot from the world and the in-progress line.
// Lines are in attachment order (oldest first). active may be nil.
func Compile(w *World, active *geometry.Line) Snapshot {
	snap := Snapshot{Lines: make([]LineState, 0)}
	if w == nil {
		return snap
	}

	if w.anchor != nil {
		snap.AnchorID = w.anchor.ID
	}

	for _, l := range w.lines {
		snap.Lines = append(snap.Lines, compileLine(l))
	}

	if active != nil && !active.Destroyed() && !active.Attached() {
		state := compileLine(active)
		snap.Active = &state
	}

	return snap
}

func compileLine(l *geometry.Line) LineState {
	mesh := l.Mesh()
	return LineState{
		ID:                 l.ID(),
		Points:             toArrays(l.Points()),
		Path:               toArrays(l.Interpolated()),
		Diameter:           l.Diameter(),
		InterpolationSteps: l.InterpolationSteps(),
		Refined:            l.Refined(),
		VertexCount:        mesh.VertexCount(),
		TriangleCount:      mesh.TriangleCount(),
		Attached:           l.Attached(),
		Parent:             l.Parent(),
	}
}

func toArrays(points []mgl64.Vec3) [][3]float64 {
	out := make([][3]float64, len(points))
	for i, p := range points {
		out[i] = [3]float64(p)
	}
	return out
}

// JSON serializes the snapshot.
func (s Snapshot) JSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}
