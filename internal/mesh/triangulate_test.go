package mesh

import "testing"

func unitSquareVerts() []meshVertex {
	return []meshVertex{
		{U: 0, V: 0, H: 0, Constrained: true, Alive: true},
		{U: 1, V: 0, H: 0.2, Constrained: true, Alive: true},
		{U: 1, V: 1, H: 0.4, Constrained: true, Alive: true},
		{U: 0, V: 1, H: 0.6, Constrained: true, Alive: true},
		{U: 0.5, V: 0.5, H: 0.5, Alive: true},
	}
}

func TestTriangulateProducesLiveTriangles(t *testing.T) {
	m := triangulate(unitSquareVerts())
	live := m.liveTriangles()
	if len(live) == 0 {
		t.Fatal("expected at least one live triangle")
	}
	for _, ti := range live {
		if m.degenerate(m.Triangles[ti]) {
			t.Errorf("triangle %d is degenerate", ti)
		}
	}
}

func TestTriangulateStripsSuperTriangleVertices(t *testing.T) {
	m := triangulate(unitSquareVerts())

	// triangulate adds the three super-triangle vertices first (indices
	// 0-2), so the five input points occupy indices 3-7. No live triangle
	// may reference a super-triangle vertex, every input vertex must still
	// be alive, and no super-triangle vertex may be.
	const superCount = 3
	for i := superCount; i < len(m.Vertices); i++ {
		if !m.Vertices[i].Alive {
			t.Errorf("input vertex %d should still be alive", i)
		}
	}
	for i := 0; i < superCount; i++ {
		if m.Vertices[i].Alive {
			t.Errorf("super-triangle vertex %d leaked into output as alive", i)
		}
	}
	for _, ti := range m.liveTriangles() {
		for _, v := range m.Triangles[ti].V {
			if int(v) < superCount {
				t.Errorf("live triangle references super-triangle vertex %d", v)
			}
		}
	}
}

func TestTriangulateCoversUnitSquare(t *testing.T) {
	m := triangulate(unitSquareVerts())

	// Every live triangle's centroid must fall within the unit square.
	for _, ti := range m.liveTriangles() {
		t2 := m.Triangles[ti]
		a, b, c := m.Vertices[t2.V[0]], m.Vertices[t2.V[1]], m.Vertices[t2.V[2]]
		cu := (a.U + b.U + c.U) / 3
		cv := (a.V + b.V + c.V) / 3
		if cu < 0 || cu > 1 || cv < 0 || cv > 1 {
			t.Errorf("triangle %d centroid (%v,%v) outside unit square", ti, cu, cv)
		}
	}
}

func TestTriangulateSmallGrid(t *testing.T) {
	var verts []meshVertex
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			verts = append(verts, meshVertex{U: float64(i) / 2, V: float64(j) / 2, H: 0.1 * float64(i+j), Alive: true})
		}
	}
	m := triangulate(verts)
	if len(m.liveTriangles()) == 0 {
		t.Fatal("expected triangles for a 3x3 grid")
	}
	// A 3x3 grid triangulates into 8 triangles (2 per unit cell, 4 cells).
	if got := len(m.liveTriangles()); got != 8 {
		t.Errorf("live triangle count = %d, want 8", got)
	}
}
