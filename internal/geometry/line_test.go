package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPointRespectsMinimumDistance(t *testing.T) {
	l := NewLine("line_test")

	ok, err := l.AppendPoint(mgl64.Vec3{0, 0, 0})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.AppendPoint(mgl64.Vec3{0.01, 0, 0})
	require.NoError(t, err)
	assert.False(t, ok, "point closer than the minimum distance must be dropped")

	ok, err = l.AppendPoint(mgl64.Vec3{0.05, 0, 0})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 2, l.PointCount())
}

func TestConfigure(t *testing.T) {
	l := NewLine("line_test")
	require.NoError(t, l.Configure(0.04, 3))
	assert.Equal(t, 0.04, l.Diameter())
	assert.Equal(t, 3, l.InterpolationSteps())

	assert.ErrorIs(t, l.Configure(0, 3), ErrInvalidGeometryState)
	assert.ErrorIs(t, l.Configure(0.04, 0), ErrInvalidGeometryState)

	_, err := l.AppendPoint(mgl64.Vec3{})
	require.NoError(t, err)

	assert.NoError(t, l.Configure(0.04, 3), "identical reapply is allowed")
	assert.ErrorIs(t, l.Configure(0.05, 3), ErrInvalidGeometryState)
}

func TestRemoveLastPoint(t *testing.T) {
	l := NewLine("line_test")
	_, err := l.RemoveLastPoint()
	assert.ErrorIs(t, err, ErrInvalidGeometryState)

	want := mgl64.Vec3{1, 2, 3}
	_, err = l.AppendPoint(want)
	require.NoError(t, err)

	got, err := l.RemoveLastPoint()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Zero(t, l.PointCount())
}

func TestUseAfterDestroy(t *testing.T) {
	l := NewLine("line_test")
	_, err := l.AppendPoint(mgl64.Vec3{})
	require.NoError(t, err)

	l.Destroy()
	assert.True(t, l.Destroyed())
	assert.Zero(t, l.PointCount())

	_, err = l.AppendPoint(mgl64.Vec3{1, 0, 0})
	assert.ErrorIs(t, err, ErrUseAfterDestroy)
	assert.ErrorIs(t, err, ErrInvalidGeometryState)

	_, err = l.RemoveLastPoint()
	assert.ErrorIs(t, err, ErrUseAfterDestroy)
	assert.ErrorIs(t, l.Configure(0.02, 5), ErrUseAfterDestroy)
	assert.ErrorIs(t, l.RefineMesh(), ErrUseAfterDestroy)
	_, err = l.Reparent("anchor_x")
	assert.ErrorIs(t, err, ErrUseAfterDestroy)
}

func TestReparent(t *testing.T) {
	l := NewLine("line_test")
	assert.False(t, l.Attached())

	prev, err := l.Reparent("anchor_a")
	require.NoError(t, err)
	assert.Empty(t, prev)
	assert.True(t, l.Attached())

	prev, err = l.Reparent("")
	require.NoError(t, err)
	assert.Equal(t, "anchor_a", prev)
	assert.False(t, l.Attached())
}

func TestRefineMeshSimplifiesCollinearPoints(t *testing.T) {
	l := NewLine("line_test")
	for i := 0; i < 6; i++ {
		_, err := l.AppendPoint(mgl64.Vec3{float64(i) * 0.1, 0, 0})
		require.NoError(t, err)
	}
	before := l.Mesh().VertexCount()

	require.NoError(t, l.RefineMesh())
	assert.True(t, l.Refined())
	assert.Equal(t, []mgl64.Vec3{{0, 0, 0}, {0.5, 0, 0}}, l.Points())
	assert.False(t, l.Mesh().IsEmpty())
	assert.NotEqual(t, before, l.Mesh().VertexCount())
}

func TestMeshInvalidatedOnAppend(t *testing.T) {
	l := NewLine("line_test")
	assert.True(t, l.Mesh().IsEmpty())

	_, err := l.AppendPoint(mgl64.Vec3{0, 0, 0})
	require.NoError(t, err)
	_, err = l.AppendPoint(mgl64.Vec3{0, 0.1, 0})
	require.NoError(t, err)

	m := l.Mesh()
	// 2 control points with 5 steps give 6 path samples.
	assert.Equal(t, 6*tubeSides, m.VertexCount())
	assert.Equal(t, 5*tubeSides*2, m.TriangleCount())
}
