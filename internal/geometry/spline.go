package geometry

import "github.com/go-gl/mathgl/mgl64"

// CatmullRom samples a uniform Catmull-Rom spline through points with steps
// samples per segment. The result always passes through every control point.
func CatmullRom(points []mgl64.Vec3, steps int) []mgl64.Vec3 {
	n := len(points)
	if n < 2 || steps <= 1 {
		out := make([]mgl64.Vec3, n)
		copy(out, points)
		return out
	}

	out := make([]mgl64.Vec3, 0, (n-1)*steps+1)
	for i := 0; i < n-1; i++ {
		p0 := points[max(i-1, 0)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := points[min(i+2, n-1)]

		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			out = append(out, catmullRomPoint(p0, p1, p2, p3, t))
		}
	}
	return append(out, points[n-1])
}

func catmullRomPoint(p0, p1, p2, p3 mgl64.Vec3, t float64) mgl64.Vec3 {
	t2 := t * t
	t3 := t2 * t

	a := p1.Mul(2)
	b := p2.Sub(p0).Mul(t)
	c := p0.Mul(2).Sub(p1.Mul(5)).Add(p2.Mul(4)).Sub(p3).Mul(t2)
	d := p1.Mul(3).Sub(p0).Sub(p2.Mul(3)).Add(p3).Mul(t3)

	return a.Add(b).Add(c).Add(d).Mul(0.5)
}
