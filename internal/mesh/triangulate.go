package mesh

// triangulate builds a 2D Delaunay triangulation of the given points,
// treating (U,V) as position and H as attribute (spec.md §4.4 step 2),
// using the Bowyer-Watson incremental insertion algorithm: a large
// bounding "super triangle" is added first, points are inserted one at a
// time, and any triangle whose circumcircle contains the new point is
// removed and re-triangulated as a fan from the new point to the
// boundary of the removed region. Triangles touching the super triangle
// are stripped at the end.
//
// points[i].Constrained carries through to the produced mesh unchanged;
// triangulate does not itself mark any vertex constrained.
func triangulate(points []meshVertex) *polyMesh {
	m := newPolyMesh()

	const margin = 10.0
	s0 := m.addVertex(-margin, -margin, 0, false)
	s1 := m.addVertex(margin*3, -margin, 0, false)
	s2 := m.addVertex(-margin, margin*3, 0, false)
	m.addTriangle(s0, s1, s2)
	superVerts := map[int32]bool{s0: true, s1: true, s2: true}

	for _, p := range points {
		idx := m.addVertex(p.U, p.V, p.H, p.Constrained)
		insertPoint(m, idx)
	}

	// Strip any triangle touching a super-triangle vertex, and the
	// super-triangle vertices themselves: nothing references them once
	// their triangles are gone, so they must not appear in the
	// quantized output as orphan vertices.
	for i := range m.Triangles {
		t := &m.Triangles[i]
		if !t.Alive {
			continue
		}
		if superVerts[t.V[0]] || superVerts[t.V[1]] || superVerts[t.V[2]] {
			t.Alive = false
		}
	}
	for v := range superVerts {
		m.Vertices[v].Alive = false
	}

	return m
}

// insertPoint inserts vertex idx into the triangulation by the standard
// Bowyer-Watson cavity re-triangulation.
func insertPoint(m *polyMesh, idx int32) {
	p := m.Vertices[idx]

	var bad []int32
	for _, ti := range m.liveTriangles() {
		t := m.Triangles[ti]
		a, b, c := m.Vertices[t.V[0]], m.Vertices[t.V[1]], m.Vertices[t.V[2]]
		if inCircumcircle(a, b, c, p) {
			bad = append(bad, ti)
		}
	}
	if len(bad) == 0 {
		// Numerically degenerate: fall back to the nearest triangle and
		// split it in three rather than dropping the point.
		ti := nearestTriangle(m, p)
		if ti < 0 {
			return
		}
		bad = []int32{ti}
	}

	badSet := make(map[int32]bool, len(bad))
	for _, ti := range bad {
		badSet[ti] = true
	}

	// Boundary of the cavity: edges that belong to exactly one bad
	// triangle (not shared with another bad triangle).
	edgeCount := make(map[edgeKey]int)
	edgeOwner := make(map[edgeKey][2]int32) // directed endpoints, for winding
	for _, ti := range bad {
		t := m.Triangles[ti]
		verts := t.V
		for i := 0; i < 3; i++ {
			a, b := verts[i], verts[(i+1)%3]
			edgeCount[makeEdgeKey(a, b)]++
			edgeOwner[makeEdgeKey(a, b)] = [2]int32{a, b}
		}
	}

	for _, ti := range bad {
		m.Triangles[ti].Alive = false
	}

	for e, n := range edgeCount {
		if n != 1 {
			continue
		}
		ends := edgeOwner[e]
		m.addTriangle(ends[0], ends[1], idx)
	}
}

// nearestTriangle returns the live triangle whose centroid is closest to
// p, used only as a degenerate-input fallback.
func nearestTriangle(m *polyMesh, p meshVertex) int32 {
	best := int32(-1)
	bestD := 0.0
	for _, ti := range m.liveTriangles() {
		t := m.Triangles[ti]
		a, b, c := m.Vertices[t.V[0]], m.Vertices[t.V[1]], m.Vertices[t.V[2]]
		cu := (a.U + b.U + c.U) / 3
		cv := (a.V + b.V + c.V) / 3
		d := (cu-p.U)*(cu-p.U) + (cv-p.V)*(cv-p.V)
		if best < 0 || d < bestD {
			best, bestD = ti, d
		}
	}
	return best
}

// inCircumcircle reports whether point d lies strictly inside the
// circumcircle of triangle (a,b,c), assuming a,b,c are wound
// counter-clockwise, via the standard determinant test.
func inCircumcircle(a, b, c, d meshVertex) bool {
	ax, ay := a.U-d.U, a.V-d.V
	bx, by := b.U-d.U, b.V-d.V
	cx, cy := c.U-d.U, c.V-d.V

	aLenSq := ax*ax + ay*ay
	bLenSq := bx*bx + by*by
	cLenSq := cx*cx + cy*cy

	det := ax*(by*cLenSq-bLenSq*cy) -
		ay*(bx*cLenSq-bLenSq*cx) +
		aLenSq*(bx*cy-by*cx)

	// Orientation of (a,b,c): if clockwise, the sign convention flips.
	orient := (b.U-a.U)*(c.V-a.V) - (c.U-a.U)*(b.V-a.V)
	if orient < 0 {
		det = -det
	}
	return det > 1e-12
}
