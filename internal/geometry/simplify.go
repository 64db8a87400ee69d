package geometry

import "github.com/go-gl/mathgl/mgl64"

// Simplify reduces points with the Ramer-Douglas-Peucker algorithm. Points
// within tolerance of the simplified polyline are dropped; the first and last
// points are always kept.
func Simplify(points []mgl64.Vec3, tolerance float64) []mgl64.Vec3 {
	if len(points) < 3 {
		out := make([]mgl64.Vec3, len(points))
		copy(out, points)
		return out
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	simplifyRange(points, 0, len(points)-1, tolerance, keep)

	out := make([]mgl64.Vec3, 0, len(points))
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

func simplifyRange(points []mgl64.Vec3, first, last int, tolerance float64, keep []bool) {
	if last-first < 2 {
		return
	}

	maxDist := -1.0
	index := first
	for i := first + 1; i < last; i++ {
		if d := segmentDistance(points[i], points[first], points[last]); d > maxDist {
			maxDist = d
			index = i
		}
	}

	if maxDist > tolerance {
		keep[index] = true
		simplifyRange(points, first, index, tolerance, keep)
		simplifyRange(points, index, last, tolerance, keep)
	}
}

// segmentDistance returns the distance from p to the segment a-b.
func segmentDistance(p, a, b mgl64.Vec3) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.Sub(a).Len()
	}
	t := p.Sub(a).Dot(ab) / lenSq
	t = mgl64.Clamp(t, 0, 1)
	return p.Sub(a.Add(ab.Mul(t))).Len()
}
