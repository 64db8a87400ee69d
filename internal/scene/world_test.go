package scene

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/arsketch/internal/geometry"
	"github.com/inamate/arsketch/internal/typeid"
)

func newLine(t *testing.T, points ...mgl64.Vec3) *geometry.Line {
	t.Helper()
	l := geometry.NewLine(typeid.NewLineID())
	for _, p := range points {
		_, err := l.AppendPoint(p)
		require.NoError(t, err)
	}
	return l
}

func TestEnsureAnchorIsLazyAndStable(t *testing.T) {
	w := NewWorld()
	assert.Nil(t, w.Anchor())

	a := w.EnsureAnchor()
	require.NotNil(t, a)
	require.NoError(t, typeid.Validate(a.ID, typeid.PrefixAnchor))
	assert.Same(t, a, w.EnsureAnchor())
}

func TestAttachRequiresAnchor(t *testing.T) {
	w := NewWorld()
	err := w.Attach(newLine(t))
	assert.ErrorIs(t, err, ErrNoAnchor)
}

func TestAttachDetach(t *testing.T) {
	w := NewWorld()
	anchor := w.EnsureAnchor()
	l := newLine(t, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 1, 0})

	require.NoError(t, w.Attach(l))
	assert.True(t, w.Contains(l))
	assert.Equal(t, anchor.ID, l.Parent())
	assert.ErrorIs(t, w.Attach(l), ErrAlreadyAttached)

	require.NoError(t, w.Detach(l))
	assert.False(t, w.Contains(l))
	assert.False(t, l.Attached())
	assert.False(t, l.Destroyed())
	assert.Equal(t, 2, l.PointCount())
	assert.ErrorIs(t, w.Detach(l), ErrNotAttached)
}

func TestLinesKeepAttachmentOrder(t *testing.T) {
	w := NewWorld()
	w.EnsureAnchor()
	a, b, c := newLine(t), newLine(t), newLine(t)
	for _, l := range []*geometry.Line{a, b, c} {
		require.NoError(t, w.Attach(l))
	}

	require.NoError(t, w.Detach(b))
	assert.Equal(t, []*geometry.Line{a, c}, w.Lines())
	assert.Equal(t, 2, w.Len())
}

func TestCompile(t *testing.T) {
	w := NewWorld()
	anchor := w.EnsureAnchor()
	committed := newLine(t, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0.1, 0})
	require.NoError(t, w.Attach(committed))
	active := newLine(t, mgl64.Vec3{1, 1, 1})

	snap := Compile(w, active)
	assert.Equal(t, anchor.ID, snap.AnchorID)
	require.Len(t, snap.Lines, 1)

	got := snap.Lines[0]
	assert.Equal(t, committed.ID(), got.ID)
	assert.Equal(t, [][3]float64{{0, 0, 0}, {0, 0.1, 0}}, got.Points)
	assert.True(t, got.Attached)
	assert.Equal(t, anchor.ID, got.Parent)
	assert.Positive(t, got.VertexCount)

	require.NotNil(t, snap.Active)
	assert.Equal(t, active.ID(), snap.Active.ID)
	assert.False(t, snap.Active.Attached)
	assert.Zero(t, snap.Active.VertexCount)
}

func TestCompileSkipsDestroyedActiveLine(t *testing.T) {
	active := newLine(t)
	active.Destroy()

	snap := Compile(NewWorld(), active)
	assert.Nil(t, snap.Active)
	assert.Empty(t, snap.AnchorID)
	assert.NotNil(t, snap.Lines)
}

func TestSnapshotJSON(t *testing.T) {
	w := NewWorld()
	w.EnsureAnchor()
	require.NoError(t, w.Attach(newLine(t, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0})))

	data, err := Compile(w, nil).JSON()
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	require.Len(t, decoded.Lines, 1)
	assert.Equal(t, geometry.DefaultDiameter, decoded.Lines[0].Diameter)
}
