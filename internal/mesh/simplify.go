package mesh

import "math"

// borderConstraint records, for one tile pass, which of the four sides
// already carry committed neighbor vertices and must not be disturbed.
// West/South become true once a non-empty inherited packet exists for
// that side; East/North are always false during this pass — the current
// tile is free to choose them, and they become the next tiles'
// West/South constraints (spec.md §4.4 step 6).
type borderConstraint struct {
	West, South, East, North bool
}

func (c borderConstraint) forSide(s Side) bool {
	switch s {
	case West:
		return c.West
	case South:
		return c.South
	case East:
		return c.East
	case North:
		return c.North
	}
	return false
}

// simplify repeatedly collapses the lowest-cost eligible edge until the
// edge-count stop ratio is reached (spec.md §4.4 step 3), honoring the
// constrained-placement policy of step 4. If every remaining edge is
// ineligible before the stop ratio is reached, simplification terminates
// early and the current mesh is accepted (spec.md §4.4, Failure).
func simplify(m *polyMesh, stopRatio float64, bc borderConstraint) {
	initial := len(m.allEdges())
	target := int(math.Round(float64(initial) * stopRatio))
	if target < 1 {
		target = 1
	}

	for {
		edges := m.allEdges()
		if len(edges) <= target {
			return
		}

		var (
			bestA, bestB int32
			bestCost     = math.Inf(1)
			bestPlace    meshVertex
			found        bool
		)

		for e := range edges {
			va, vb := m.Vertices[e.A], m.Vertices[e.B]
			place, ok := decidePlacement(m, e.A, e.B, va, vb, bc)
			if !ok {
				continue
			}
			cost := collapseCost(m, e.A, e.B, place)
			if cost < bestCost {
				bestCost = cost
				bestA, bestB = e.A, e.B
				bestPlace = place
				found = true
			}
		}

		if !found {
			return
		}
		collapseEdge(m, bestA, bestB, bestPlace)
	}
}

// decidePlacement implements the constrained-placement policy of
// spec.md §4.4 step 4, grounded directly on the ordered precedence of
// CGAL's further_constrained_placement.h: reject if both endpoints are
// constrained, reject if the edge itself is constrained, survive the
// sole constrained endpoint, then check a's incident edges before b's —
// if a touches a constrained edge, the collapse survives at va
// unconditionally, without ever inspecting b; only when a doesn't is b's
// incident-edge check consulted. The two sides are never rejected for
// jointly touching constrained edges the way the two-constrained-endpoint
// case is.
func decidePlacement(m *polyMesh, a, b int32, va, vb meshVertex, bc borderConstraint) (meshVertex, bool) {
	if va.Constrained && vb.Constrained {
		return meshVertex{}, false
	}
	if m.ConstrainedEdges[makeEdgeKey(a, b)] {
		return meshVertex{}, false
	}
	if va.Constrained {
		return va, true
	}
	if vb.Constrained {
		return vb, true
	}

	if vertexHasConstrainedEdge(m, a) {
		return va, true
	}
	if vertexHasConstrainedEdge(m, b) {
		return vb, true
	}

	place := meshVertex{
		U: (va.U + vb.U) / 2,
		V: (va.V + vb.V) / 2,
		H: (va.H + vb.H) / 2,
	}
	if place.U < 0 || place.U > 1 || place.V < 0 || place.V > 1 {
		return meshVertex{}, false
	}
	if place.U == 0 && bc.West {
		return meshVertex{}, false
	}
	if place.U == 1 && bc.East {
		return meshVertex{}, false
	}
	if place.V == 0 && bc.South {
		return meshVertex{}, false
	}
	if place.V == 1 && bc.North {
		return meshVertex{}, false
	}
	return place, true
}

func vertexHasConstrainedEdge(m *polyMesh, v int32) bool {
	for _, ti := range m.trianglesIncident(v) {
		for _, e := range edgesOf(m.Triangles[ti]) {
			if (e.A == v || e.B == v) && m.ConstrainedEdges[e] {
				return true
			}
		}
	}
	return false
}

// collapseCost is a Garland-Heckbert-style quadric cost: the sum of
// squared distances from the candidate placement to the supporting
// planes of every triangle incident to either endpoint that survives the
// collapse (triangles referencing both a and b degenerate and are
// excluded).
func collapseCost(m *polyMesh, a, b int32, place meshVertex) float64 {
	seen := make(map[int32]bool)
	total := 0.0
	for _, v := range [2]int32{a, b} {
		for _, ti := range m.trianglesIncident(v) {
			if seen[ti] {
				continue
			}
			seen[ti] = true
			t := m.Triangles[ti]
			if t.hasVertex(a) && t.hasVertex(b) {
				continue // degenerates away on collapse
			}
			total += planeDistanceSquared(m, t, place)
		}
	}
	return total
}

// planeDistanceSquared returns the squared distance from p to the plane
// through triangle t's three vertices in (U,V,H) space.
func planeDistanceSquared(m *polyMesh, t triangle, p meshVertex) float64 {
	p0, p1, p2 := m.Vertices[t.V[0]], m.Vertices[t.V[1]], m.Vertices[t.V[2]]
	ux, uy, uz := p1.U-p0.U, p1.V-p0.V, p1.H-p0.H
	vx, vy, vz := p2.U-p0.U, p2.V-p0.V, p2.H-p0.H

	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	n := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if n < 1e-15 {
		return 0
	}
	nx, ny, nz = nx/n, ny/n, nz/n
	d := -(nx*p0.U + ny*p0.V + nz*p0.H)

	dist := nx*p.U + ny*p.V + nz*p.H + d
	return dist * dist
}

// collapseEdge merges b into a at the given placement: a's position and
// constrained flag are updated, every triangle referencing b is
// repointed to a, triangles that degenerate as a result are deleted, and
// constrained-edge entries touching b are migrated to a.
func collapseEdge(m *polyMesh, a, b int32, place meshVertex) {
	m.Vertices[a].U = place.U
	m.Vertices[a].V = place.V
	m.Vertices[a].H = place.H
	m.Vertices[a].Constrained = m.Vertices[a].Constrained || m.Vertices[b].Constrained
	m.Vertices[b].Alive = false

	for _, ti := range m.trianglesIncident(b) {
		t := &m.Triangles[ti]
		t.replaceVertex(b, a)
		if m.degenerate(*t) {
			t.Alive = false
		}
	}

	for e, constrained := range m.ConstrainedEdges {
		if !constrained {
			continue
		}
		if e.A == b || e.B == b {
			na, nb := e.A, e.B
			if na == b {
				na = a
			}
			if nb == b {
				nb = a
			}
			delete(m.ConstrainedEdges, e)
			if na != nb {
				m.ConstrainedEdges[makeEdgeKey(na, nb)] = true
			}
		}
	}
}
