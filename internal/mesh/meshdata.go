package mesh

// meshVertex is one vertex of the working polyhedral surface, in
// normalized [0,1]^3 coordinates. Constrained marks a vertex that a
// collapse must never move or merge away: the four tile corners, plus
// any vertex inherited from an already-committed neighbor border.
type meshVertex struct {
	U, V, H     float64
	Constrained bool
	Alive       bool
}

// triangle is three vertex indices into polyMesh.Vertices, wound
// counter-clockwise in (U,V). Alive marks a live (non-deleted) entry;
// deleted slots are never compacted mid-algorithm to keep vertex/triangle
// indices stable for the duration of a pass.
type triangle struct {
	V     [3]int32
	Alive bool
}

// edgeKey is an undirected edge identity (low index first).
type edgeKey struct {
	A, B int32
}

func makeEdgeKey(a, b int32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// polyMesh is the arena-of-indices mesh representation used across
// triangulation, simplification, border classification and
// quantization: vertices and triangles are addressed by int32 index into
// parallel slices, never by pointer, so no cyclic ownership references
// exist between mesh elements (spec.md §9 design note).
type polyMesh struct {
	Vertices []meshVertex
	Triangles []triangle
	// ConstrainedEdges marks edges that lie entirely on an already
	// -committed border (west/south when inherited) and must never be
	// collapsed.
	ConstrainedEdges map[edgeKey]bool
}

func newPolyMesh() *polyMesh {
	return &polyMesh{ConstrainedEdges: make(map[edgeKey]bool)}
}

func (m *polyMesh) addVertex(u, v, h float64, constrained bool) int32 {
	m.Vertices = append(m.Vertices, meshVertex{U: u, V: v, H: h, Constrained: constrained, Alive: true})
	return int32(len(m.Vertices) - 1)
}

func (m *polyMesh) addTriangle(a, b, c int32) int32 {
	m.Triangles = append(m.Triangles, triangle{V: [3]int32{a, b, c}, Alive: true})
	return int32(len(m.Triangles) - 1)
}

// liveTriangles returns the indices of triangles not yet deleted.
func (m *polyMesh) liveTriangles() []int32 {
	out := make([]int32, 0, len(m.Triangles))
	for i, t := range m.Triangles {
		if t.Alive {
			out = append(out, int32(i))
		}
	}
	return out
}

// trianglesIncident returns the indices of live triangles referencing
// vertex v.
func (m *polyMesh) trianglesIncident(v int32) []int32 {
	var out []int32
	for i, t := range m.Triangles {
		if !t.Alive {
			continue
		}
		if t.V[0] == v || t.V[1] == v || t.V[2] == v {
			out = append(out, int32(i))
		}
	}
	return out
}

// edgesOf returns the three undirected edges of a triangle.
func edgesOf(t triangle) [3]edgeKey {
	return [3]edgeKey{
		makeEdgeKey(t.V[0], t.V[1]),
		makeEdgeKey(t.V[1], t.V[2]),
		makeEdgeKey(t.V[2], t.V[0]),
	}
}

// hasVertex reports whether triangle t references vertex v.
func (t triangle) hasVertex(v int32) bool {
	return t.V[0] == v || t.V[1] == v || t.V[2] == v
}

// replaceVertex substitutes every occurrence of from with to within t.
func (t *triangle) replaceVertex(from, to int32) {
	for i, v := range t.V {
		if v == from {
			t.V[i] = to
		}
	}
}

// degenerate reports whether t references fewer than three distinct
// vertices, or has zero signed area in (U,V).
func (m *polyMesh) degenerate(t triangle) bool {
	if t.V[0] == t.V[1] || t.V[1] == t.V[2] || t.V[2] == t.V[0] {
		return true
	}
	a, b, c := m.Vertices[t.V[0]], m.Vertices[t.V[1]], m.Vertices[t.V[2]]
	area2 := (b.U-a.U)*(c.V-a.V) - (c.U-a.U)*(b.V-a.V)
	return area2 > -1e-12 && area2 < 1e-12
}

// allEdges returns the set of undirected edges present in live
// triangles, each mapped to the number of live triangles sharing it (1
// for a border edge, 2 for an interior edge).
func (m *polyMesh) allEdges() map[edgeKey]int {
	out := make(map[edgeKey]int)
	for _, t := range m.Triangles {
		if !t.Alive {
			continue
		}
		for _, e := range edgesOf(t) {
			out[e]++
		}
	}
	return out
}

// borderEdges returns edges belonging to exactly one live triangle.
func (m *polyMesh) borderEdges() []edgeKey {
	var out []edgeKey
	for e, n := range m.allEdges() {
		if n == 1 {
			out = append(out, e)
		}
	}
	return out
}

func onUnitSquareBorder(v meshVertex) bool {
	const eps = 1e-9
	return v.U < eps || v.U > 1-eps || v.V < eps || v.V > 1-eps
}
