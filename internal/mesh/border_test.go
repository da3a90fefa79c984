package mesh

import "testing"

// squareMesh builds the two-triangle mesh of a unit square with a center
// vertex omitted, so the border ring is exactly the four corners.
func squareMesh() *polyMesh {
	m := newPolyMesh()
	sw := m.addVertex(0, 0, 0.1, true)
	se := m.addVertex(1, 0, 0.2, true)
	ne := m.addVertex(1, 1, 0.3, true)
	nw := m.addVertex(0, 1, 0.4, true)
	m.addTriangle(sw, se, ne)
	m.addTriangle(sw, ne, nw)
	return m
}

func TestClassifyBorderFindsFourCorners(t *testing.T) {
	m := squareMesh()
	sides, east, north, err := classifyBorder(m, 65, 65, 0, 100)
	if err != nil {
		t.Fatalf("classifyBorder: %v", err)
	}

	corners := 0
	for _, sl := range sides {
		if len(sl) == 2 {
			corners++
		}
	}
	if corners != 4 {
		t.Errorf("corner count = %d, want 4", corners)
	}

	if len(east.Points) != 2 {
		t.Errorf("east packet has %d points, want 2 (both east corners)", len(east.Points))
	}
	if len(north.Points) != 2 {
		t.Errorf("north packet has %d points, want 2 (both north corners)", len(north.Points))
	}
}

func TestClassifyBorderEastPacketUsesZeroX(t *testing.T) {
	m := squareMesh()
	_, east, _, err := classifyBorder(m, 65, 65, 0, 100)
	if err != nil {
		t.Fatalf("classifyBorder: %v", err)
	}
	for _, p := range east.Points {
		if p.X != 0 {
			t.Errorf("east packet point X = %v, want 0 (next tile's west edge)", p.X)
		}
	}
}

func TestClassifyBorderDenormalizesHeight(t *testing.T) {
	m := squareMesh()
	_, east, _, err := classifyBorder(m, 65, 65, 10, 20)
	if err != nil {
		t.Fatalf("classifyBorder: %v", err)
	}
	for _, p := range east.Points {
		if p.Z < 10 || p.Z > 20 {
			t.Errorf("denormalized height %v outside [minH,maxH]=[10,20]", p.Z)
		}
	}
}

func TestCornerSides(t *testing.T) {
	cases := []struct {
		u, v        float64
		want1, want2 Side
	}{
		{0, 0, West, South},
		{0, 1, West, North},
		{1, 0, East, South},
		{1, 1, East, North},
	}
	for _, c := range cases {
		s1, s2 := cornerSides(meshVertex{U: c.u, V: c.v})
		if s1 != c.want1 || s2 != c.want2 {
			t.Errorf("cornerSides(%v,%v) = (%v,%v), want (%v,%v)", c.u, c.v, s1, s2, c.want1, c.want2)
		}
	}
}

func TestBorderRingNoEdgesErrors(t *testing.T) {
	m := newPolyMesh()
	_, err := borderRing(m)
	if err == nil {
		t.Fatal("expected an error for a mesh with no border edges")
	}
}
