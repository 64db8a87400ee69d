package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// tubeSides is the number of vertices in each ring of a tube mesh.
const tubeSides = 8

// Mesh is a triangle mesh suitable for rendering.
type Mesh struct {
	Vertices []mgl64.Vec3
	Indices  []uint32 // 3 per triangle
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// TubeMesh sweeps a ring of the given radius along path. Paths with fewer
// than two points produce an empty mesh.
func TubeMesh(path []mgl64.Vec3, radius float64) *Mesh {
	m := &Mesh{}
	if len(path) < 2 {
		return m
	}

	m.Vertices = make([]mgl64.Vec3, 0, len(path)*tubeSides)
	m.Indices = make([]uint32, 0, (len(path)-1)*tubeSides*6)

	tangent := mgl64.Vec3{0, 0, 1}
	for i := range path {
		if t := pathTangent(path, i); t.Len() > 1e-12 {
			tangent = t.Normalize()
		}
		normal, binormal := ringBasis(tangent)

		for s := 0; s < tubeSides; s++ {
			angle := 2 * math.Pi * float64(s) / tubeSides
			offset := normal.Mul(math.Cos(angle)).Add(binormal.Mul(math.Sin(angle))).Mul(radius)
			m.Vertices = append(m.Vertices, path[i].Add(offset))
		}
	}

	for i := 0; i < len(path)-1; i++ {
		for s := 0; s < tubeSides; s++ {
			a := uint32(i*tubeSides + s)
			b := uint32(i*tubeSides + (s+1)%tubeSides)
			c := uint32((i+1)*tubeSides + s)
			d := uint32((i+1)*tubeSides + (s+1)%tubeSides)
			m.Indices = append(m.Indices, a, c, b, b, c, d)
		}
	}
	return m
}

func pathTangent(path []mgl64.Vec3, i int) mgl64.Vec3 {
	prev := path[max(i-1, 0)]
	next := path[min(i+1, len(path)-1)]
	return next.Sub(prev)
}

// ringBasis returns two unit vectors perpendicular to tangent and to each other.
func ringBasis(tangent mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	ref := mgl64.Vec3{0, 1, 0}
	if math.Abs(tangent.Dot(ref)) > 0.99 {
		ref = mgl64.Vec3{1, 0, 0}
	}
	normal := tangent.Cross(ref).Normalize()
	binormal := tangent.Cross(normal).Normalize()
	return normal, binormal
}
