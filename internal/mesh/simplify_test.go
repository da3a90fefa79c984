package mesh

import "testing"

// gridMesh triangulates an n x n grid of unit-square samples with the four
// corners constrained, mimicking buildTile's input.
func gridMesh(n int) *polyMesh {
	var verts []meshVertex
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			u := float64(i) / float64(n-1)
			v := float64(j) / float64(n-1)
			constrained := (u == 0 || u == 1) && (v == 0 || v == 1)
			verts = append(verts, meshVertex{U: u, V: v, H: 0.1 * float64(i+j), Constrained: constrained, Alive: true})
		}
	}
	return triangulate(verts)
}

func TestSimplifyReducesEdgeCount(t *testing.T) {
	m := gridMesh(9)
	before := len(m.allEdges())

	simplify(m, 0.3, borderConstraint{})

	after := len(m.allEdges())
	if after >= before {
		t.Fatalf("edge count did not decrease: before=%d after=%d", before, after)
	}
}

func TestSimplifyPreservesConstrainedCorners(t *testing.T) {
	m := gridMesh(9)
	simplify(m, 0.05, borderConstraint{})

	corners := 0
	for _, v := range m.Vertices {
		if !v.Alive {
			continue
		}
		if v.Constrained && (v.U == 0 || v.U == 1) && (v.V == 0 || v.V == 1) {
			corners++
		}
	}
	if corners < 4 {
		t.Errorf("expected at least 4 constrained corner vertices to survive, got %d", corners)
	}
}

func TestSimplifyHonorsConstrainedEdges(t *testing.T) {
	m := gridMesh(5)
	bc := borderConstraint{West: true}
	populateConstrainedEdges(m, bc)

	simplify(m, 0.05, bc)

	// Every vertex on the west edge (U==0) before simplification must still
	// be alive and still at U==0: the constrained edges between them can
	// never be collapsed.
	westCount := 0
	for _, v := range m.Vertices {
		if v.Alive && v.U == 0 {
			westCount++
		}
	}
	if westCount < 2 {
		t.Errorf("expected at least 2 surviving west-border vertices, got %d", westCount)
	}
}

func TestDecidePlacementRejectsBothEndpointsConstrained(t *testing.T) {
	m := newPolyMesh()
	a := m.addVertex(0, 0, 0, true)
	b := m.addVertex(1, 0, 0, true)
	_, ok := decidePlacement(m, a, b, m.Vertices[a], m.Vertices[b], borderConstraint{})
	if ok {
		t.Error("expected collapse between two constrained endpoints to be rejected")
	}
}

func TestDecidePlacementSurvivesSoleConstrainedEndpoint(t *testing.T) {
	m := newPolyMesh()
	a := m.addVertex(0, 0, 0, true)
	b := m.addVertex(0.5, 0, 0, false)
	place, ok := decidePlacement(m, a, b, m.Vertices[a], m.Vertices[b], borderConstraint{})
	if !ok {
		t.Fatal("expected collapse to be accepted")
	}
	if place.U != 0 || place.V != 0 {
		t.Errorf("placement = (%v,%v), want the constrained endpoint (0,0)", place.U, place.V)
	}
}

func TestDecidePlacementRejectsConstrainedEdge(t *testing.T) {
	m := newPolyMesh()
	a := m.addVertex(0, 0, 0, false)
	b := m.addVertex(0.2, 0, 0, false)
	m.ConstrainedEdges[makeEdgeKey(a, b)] = true
	_, ok := decidePlacement(m, a, b, m.Vertices[a], m.Vertices[b], borderConstraint{})
	if ok {
		t.Error("expected collapse of a constrained edge to be rejected")
	}
}

// TestSimplifyFlatRasterCollapsesToCorners exercises spec.md's flat-raster
// boundary scenario end to end through the same steps buildTile runs:
// sample a constant-height raster, build constrained-corner vertices,
// triangulate, and simplify. A flat raster carries no elevation signal
// to preserve, so simplification should collapse it down to close to
// just its four constrained corners, and minH must equal maxH throughout.
func TestSimplifyFlatRasterCollapsesToCorners(t *testing.T) {
	// Small enough that the 5% stop-ratio target falls below the
	// irreducible minimum (a quadrilateral needs at least one diagonal),
	// so termination is governed by "no eligible collapse left" rather
	// than the ratio — exercising the same near-total collapse a flat
	// raster sees in practice regardless of tile size.
	const size = 5
	const flatHeight = 100.0

	heights := make([]float32, size*size)
	for i := range heights {
		heights[i] = flatHeight
	}
	bounds := GeographicBounds{MinLon: 0, MinLat: 0, MaxLon: 1, MaxLat: 1}

	samples, minH, maxH := sampleRaster(heights, size, size, bounds, false, false)
	if minH != flatHeight || maxH != flatHeight {
		t.Fatalf("minH,maxH = %v,%v, want %v,%v for a flat raster", minH, maxH, flatHeight, flatHeight)
	}

	heightRange := maxH - minH
	verts := make([]meshVertex, len(samples))
	for i, s := range samples {
		u := s.Local.X / float64(size-1)
		v := s.Local.Y / float64(size-1)
		var h float64
		if heightRange != 0 {
			h = (s.Local.Z - minH) / heightRange
		}
		isCorner := (u == 0 || u == 1) && (v == 0 || v == 1)
		verts[i] = meshVertex{U: u, V: v, H: h, Constrained: isCorner, Alive: true}
	}

	m := triangulate(verts)
	simplify(m, 0.05, borderConstraint{})

	constrainedCorners := 0
	for _, v := range m.Vertices {
		if v.Alive && v.Constrained {
			constrainedCorners++
		}
	}
	if constrainedCorners != 4 {
		t.Fatalf("expected exactly 4 surviving constrained corners, got %d", constrainedCorners)
	}

	const maxEdgeFactor = 3
	edges := len(m.allEdges())
	if edges > maxEdgeFactor*constrainedCorners {
		t.Errorf("flat raster simplified to %d edges, want <= %d (%dx the %d constrained corners)",
			edges, maxEdgeFactor*constrainedCorners, maxEdgeFactor, constrainedCorners)
	}
}

func TestDecidePlacementPrefersAIncidentConstrainedEdgeOverB(t *testing.T) {
	// a and b are each adjacent to a (different) constrained edge; per
	// further_constrained_placement.h's v0-before-v1 order, the collapse
	// must survive at a's position without ever falling through to b's
	// check.
	m := newPolyMesh()
	a := m.addVertex(0.4, 0, 0, false)
	b := m.addVertex(0.6, 0, 0, false)
	c := m.addVertex(0.4, 0.2, 0, false)
	d := m.addVertex(0.6, 0.2, 0, false)
	m.addTriangle(a, c, b)
	m.addTriangle(b, c, d)
	m.ConstrainedEdges[makeEdgeKey(a, c)] = true
	m.ConstrainedEdges[makeEdgeKey(b, d)] = true

	place, ok := decidePlacement(m, a, b, m.Vertices[a], m.Vertices[b], borderConstraint{})
	if !ok {
		t.Fatal("expected collapse to be accepted")
	}
	if place.U != m.Vertices[a].U || place.V != m.Vertices[a].V {
		t.Errorf("placement = (%v,%v), want a's position (%v,%v)", place.U, place.V, m.Vertices[a].U, m.Vertices[a].V)
	}
}

func TestDecidePlacementRejectsPlacementOnOpposingBorder(t *testing.T) {
	m := newPolyMesh()
	a := m.addVertex(1.0, 0.2, 0, false)
	b := m.addVertex(1.0, 0.6, 0, false)
	bc := borderConstraint{East: true}
	_, ok := decidePlacement(m, a, b, m.Vertices[a], m.Vertices[b], bc)
	if ok {
		t.Error("expected midpoint placement landing on the constrained east edge to be rejected")
	}
}
