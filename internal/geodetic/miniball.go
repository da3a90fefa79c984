package geodetic

import "math"

// Sphere is a bounding sphere in ECEF space.
type Sphere struct {
	Center ECEF
	Radius float64
}

// Contains reports whether p lies within the sphere, with a small
// tolerance for floating point error accumulated during construction.
func (s Sphere) Contains(p ECEF) bool {
	const eps = 1e-7
	d := p.Sub(s.Center).Length()
	return d <= s.Radius*(1+eps)+eps
}

// MinBoundingSphere computes the exact minimum enclosing sphere of points
// using Welzl's randomized incremental algorithm. Correctness does not
// depend on input order; only the expected running time does, so callers
// with adversarially-ordered input (e.g. already sorted by an axis) still
// get a correct answer, just without the expected-linear-time guarantee.
func MinBoundingSphere(points []ECEF) Sphere {
	if len(points) == 0 {
		return Sphere{}
	}
	pts := make([]ECEF, len(points))
	copy(pts, points)
	return welzl(pts, nil)
}

// welzl recursively computes the minimum enclosing sphere of pts given
// boundary points already known to lie on the sphere's surface (at most
// 4 in 3D: the recursion terminates once len(boundary) == 4).
func welzl(pts []ECEF, boundary []ECEF) Sphere {
	if len(pts) == 0 || len(boundary) == 4 {
		return sphereFromBoundary(boundary)
	}

	p := pts[len(pts)-1]
	rest := pts[:len(pts)-1]

	sphere := welzl(rest, boundary)
	if sphere.Contains(p) {
		return sphere
	}

	return welzl(rest, append(append([]ECEF{}, boundary...), p))
}

// sphereFromBoundary builds the unique smallest sphere passing through the
// given boundary points (0 to 4 of them).
func sphereFromBoundary(boundary []ECEF) Sphere {
	switch len(boundary) {
	case 0:
		return Sphere{}
	case 1:
		return Sphere{Center: boundary[0], Radius: 0}
	case 2:
		return sphereFrom2(boundary[0], boundary[1])
	case 3:
		return sphereFrom3(boundary[0], boundary[1], boundary[2])
	default:
		return sphereFrom4(boundary[0], boundary[1], boundary[2], boundary[3])
	}
}

func sphereFrom2(a, b ECEF) Sphere {
	center := a.Add(b).Scale(0.5)
	return Sphere{Center: center, Radius: a.Sub(center).Length()}
}

// sphereFrom3 returns the smallest sphere through three points, i.e. the
// circumsphere of the triangle they form, lying in their plane.
func sphereFrom3(a, b, c ECEF) Sphere {
	ab := b.Sub(a)
	ac := c.Sub(a)
	abXac := cross(ab, ac)
	denom := 2 * abXac.Dot(abXac)
	if denom == 0 {
		// Degenerate (collinear): fall back to the widest pairwise sphere.
		return widestPairSphere([]ECEF{a, b, c})
	}

	toCenter := cross(ab.Scale(ac.Dot(ac)).Sub(ac.Scale(ab.Dot(ab))), abXac).Scale(1 / denom)
	center := a.Add(toCenter)
	return Sphere{Center: center, Radius: toCenter.Length()}
}

// sphereFrom4 returns the unique sphere passing through four non-coplanar
// points via the standard determinant circumsphere construction.
func sphereFrom4(a, b, c, d ECEF) Sphere {
	// Solve for the center x such that |x-a|=|x-b|=|x-c|=|x-d| using the
	// linear system obtained by subtracting pairs of squared-distance
	// equations.
	ax, ay, az := a.X, a.Y, a.Z
	rows := [][4]float64{
		rowFor(b, a),
		rowFor(c, a),
		rowFor(d, a),
	}
	_ = ax
	_ = ay
	_ = az

	center, ok := solve3x3(rows)
	if !ok {
		return widestPairSphere([]ECEF{a, b, c, d})
	}
	return Sphere{Center: center, Radius: center.Sub(a).Length()}
}

// rowFor builds the linear equation 2(p-q)·x = |p|^2 - |q|^2 as a row
// [coeffX, coeffY, coeffZ, rhs].
func rowFor(p, q ECEF) [4]float64 {
	return [4]float64{
		2 * (p.X - q.X),
		2 * (p.Y - q.Y),
		2 * (p.Z - q.Z),
		p.Dot(p) - q.Dot(q),
	}
}

func solve3x3(rows [][4]float64) (ECEF, bool) {
	// Cramer's rule on the 3x3 system formed by the three rows.
	m := [3][3]float64{
		{rows[0][0], rows[0][1], rows[0][2]},
		{rows[1][0], rows[1][1], rows[1][2]},
		{rows[2][0], rows[2][1], rows[2][2]},
	}
	rhs := [3]float64{rows[0][3], rows[1][3], rows[2][3]}

	det := det3(m)
	if math.Abs(det) < 1e-9 {
		return ECEF{}, false
	}

	mx := m
	mx[0][0], mx[1][0], mx[2][0] = rhs[0], rhs[1], rhs[2]
	my := m
	my[0][1], my[1][1], my[2][1] = rhs[0], rhs[1], rhs[2]
	mz := m
	mz[0][2], mz[1][2], mz[2][2] = rhs[0], rhs[1], rhs[2]

	return ECEF{
		X: det3(mx) / det,
		Y: det3(my) / det,
		Z: det3(mz) / det,
	}, true
}

func det3(m [3][3]float64) float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// widestPairSphere is the degenerate-input fallback: the smallest sphere
// covering the two most distant points, which is a valid (if not always
// minimal for >4 nearly-coplanar points) enclosing sphere.
func widestPairSphere(points []ECEF) Sphere {
	var best Sphere
	bestD := -1.0
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			d := points[i].Sub(points[j]).Length()
			if d > bestD {
				bestD = d
				best = sphereFrom2(points[i], points[j])
			}
		}
	}
	for _, p := range points {
		if !best.Contains(p) {
			best.Radius = p.Sub(best.Center).Length()
		}
	}
	return best
}
