package mesh

import (
	"fmt"
	"math"
)

// classifyBorder implements BorderClassifier (spec.md §4.5). It walks
// the simplified mesh's border ring once, detects corners by axis
// -dominance inversion, classifies every border vertex into one or two
// of the four edge lists (corners belong to two), and builds the
// east/north packets that feed the next tiles along the pyramid.
//
// w, h are the tile's raster dimensions, needed to de-normalize emitted
// packet coordinates back into tile-local raster scale; minH, maxH
// de-normalize emitted heights back into meters (spec.md §4.5 step 6:
// "heights are de-normalized using this tile's (minH, maxH) because the
// neighbor has a different normalization range").
//
// A non-nil error wraps ErrMeshInvariant when fewer than four corners
// were found by axis dominance; per spec.md §7 this is a soft failure —
// the returned classification still has exactly four corners (via the
// nearest-to-reference-corner fallback noted in spec.md §9), and the
// tile is still emitted by the caller.
func classifyBorder(m *polyMesh, w, h int, minH, maxH float64) (sides map[int32][]Side, east, north *BorderVertexPacket, err error) {
	ring, rerr := borderRing(m)
	if rerr != nil {
		return nil, &BorderVertexPacket{Side: East}, &BorderVertexPacket{Side: North}, rerr
	}

	n := len(ring)
	sides = make(map[int32][]Side, n)
	var corners []int32

	for i, v := range ring {
		p := ring[(i-1+n)%n]
		q := ring[(i+1)%n]
		vv, pv, qv := m.Vertices[v], m.Vertices[p], m.Vertices[q]

		dx1, dy1 := math.Abs(vv.U-pv.U), math.Abs(vv.V-pv.V)
		dx2, dy2 := math.Abs(vv.U-qv.U), math.Abs(vv.V-qv.V)

		isCorner := (dx1 < dy1 && dx2 > dy2) || (dx1 > dy1 && dx2 < dy2)
		if isCorner {
			corners = append(corners, v)
			s1, s2 := cornerSides(vv)
			sides[v] = []Side{s1, s2}
			continue
		}

		if dx1 < dy1 {
			if vv.U < 0.5 {
				sides[v] = []Side{West}
			} else {
				sides[v] = []Side{East}
			}
		} else {
			if vv.V < 0.5 {
				sides[v] = []Side{South}
			} else {
				sides[v] = []Side{North}
			}
		}
	}

	if len(corners) != 4 {
		err = fmt.Errorf("%w: found %d corners on border ring, want 4", ErrMeshInvariant, len(corners))
		fixupCorners(m, ring, sides)
	}

	east = &BorderVertexPacket{Side: East}
	north = &BorderVertexPacket{Side: North}
	for _, v := range ring {
		vv := m.Vertices[v]
		for _, s := range sides[v] {
			switch s {
			case East:
				east.Points = append(east.Points, Point3{
					X: 0,
					Y: vv.V * float64(h-1),
					Z: denormalizeHeight(vv.H, minH, maxH),
				})
			case North:
				north.Points = append(north.Points, Point3{
					X: vv.U * float64(w-1),
					Y: 0,
					Z: denormalizeHeight(vv.H, minH, maxH),
				})
			}
		}
	}

	return sides, east, north, err
}

func denormalizeHeight(h01, minH, maxH float64) float64 {
	if maxH == minH {
		return minH
	}
	return minH + h01*(maxH-minH)
}

// cornerSides returns the two edge lists a corner vertex belongs to,
// based on which of the unit square's four corners it is nearest: SW ->
// West,South; NW -> West,North; SE -> East,South; NE -> East,North
// (spec.md §4.5 step 5).
func cornerSides(v meshVertex) (Side, Side) {
	west := v.U < 0.5
	south := v.V < 0.5
	switch {
	case west && south:
		return West, South
	case west && !south:
		return West, North
	case !west && south:
		return East, South
	default:
		return East, North
	}
}

// borderRing collects the mesh's border edges (those belonging to
// exactly one live triangle) and walks them into a single ordered ring.
func borderRing(m *polyMesh) ([]int32, error) {
	edges := m.borderEdges()
	if len(edges) == 0 {
		return nil, fmt.Errorf("%w: mesh has no border edges", ErrMeshInvariant)
	}

	adj := make(map[int32][]int32, len(edges)*2)
	for _, e := range edges {
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}

	var start int32 = -1
	for v := range adj {
		start = v
		break
	}

	ring := []int32{start}
	visited := map[int32]bool{start: true}
	prev := int32(-1)
	cur := start

	for {
		var next int32 = -1
		for _, cand := range adj[cur] {
			if cand != prev {
				next = cand
				break
			}
		}
		if next == -1 {
			for _, cand := range adj[cur] {
				if !visited[cand] {
					next = cand
					break
				}
			}
		}
		if next == -1 || next == start {
			break
		}
		if visited[next] {
			break
		}
		ring = append(ring, next)
		visited[next] = true
		prev, cur = cur, next
	}

	return ring, nil
}

// fixupCorners forces exactly four corners by nearest-to-reference-point
// classification when axis-dominance detection found the wrong count,
// per the recovery spec.md §9 explicitly allows. Sides for every ring
// vertex are rebuilt from scratch using distance to the four unit-square
// corners for the four nearest vertices, and the dominant-axis rule for
// everyone else.
func fixupCorners(m *polyMesh, ring []int32, sides map[int32][]Side) {
	refs := [4][2]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	refSides := [4][2]Side{{West, South}, {West, North}, {East, South}, {East, North}}

	chosen := make(map[int32]bool, 4)
	for i, ref := range refs {
		best := int32(-1)
		bestD := math.Inf(1)
		for _, v := range ring {
			if chosen[v] {
				continue
			}
			vv := m.Vertices[v]
			d := (vv.U-ref[0])*(vv.U-ref[0]) + (vv.V-ref[1])*(vv.V-ref[1])
			if d < bestD {
				bestD = d
				best = v
			}
		}
		if best < 0 {
			continue
		}
		chosen[best] = true
		sides[best] = []Side{refSides[i][0], refSides[i][1]}
	}

	n := len(ring)
	for i, v := range ring {
		if chosen[v] || len(sides[v]) < 2 {
			continue
		}
		vv, pv := m.Vertices[v], m.Vertices[ring[(i-1+n)%n]]
		if math.Abs(vv.U-pv.U) < math.Abs(vv.V-pv.V) {
			if vv.U < 0.5 {
				sides[v] = []Side{West}
			} else {
				sides[v] = []Side{East}
			}
		} else if vv.V < 0.5 {
			sides[v] = []Side{South}
		} else {
			sides[v] = []Side{North}
		}
	}
}
