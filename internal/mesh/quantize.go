package mesh

import "math"

const (
	quantizeMax   = 32767
	vertexCacheSize = 32
)

// quantizeResult is the output of quantizeMesh: 16-bit vertex arrays,
// the final triangle index array, and the old-mesh-index -> final
// -vertex-index remap that BorderClassifier's edge lists must be
// expressed through (spec.md §3 invariant, §4.6 step 6).
type quantizeResult struct {
	U, V, H        []uint16
	Indices        []uint32
	OldToFinal     map[int32]uint32
	ClampWarnings  int
}

// quantizeMesh implements Quantizer (spec.md §4.6): clamp to [0,1], map
// to 16-bit integers, build the mesh-order triangle index array, apply a
// Forsyth-style vertex-cache optimization (fixed cache size 32) to the
// index order, then a vertex-fetch optimization that renumbers vertices
// to the order the index stream first touches them.
func quantizeMesh(m *polyMesh) quantizeResult {
	aliveOld := make([]int32, 0, len(m.Vertices))
	oldToCompact := make(map[int32]int32, len(m.Vertices))
	for i, vtx := range m.Vertices {
		if !vtx.Alive {
			continue
		}
		oldToCompact[int32(i)] = int32(len(aliveOld))
		aliveOld = append(aliveOld, int32(i))
	}

	u := make([]float64, len(aliveOld))
	v := make([]float64, len(aliveOld))
	h := make([]float64, len(aliveOld))
	warnings := 0
	for c, old := range aliveOld {
		vtx := m.Vertices[old]
		cu, cv, ch := vtx.U, vtx.V, vtx.H
		if cu < 0 || cu > 1 || cv < 0 || cv > 1 || ch < 0 || ch > 1 {
			warnings++
		}
		u[c] = clamp01(cu)
		v[c] = clamp01(cv)
		h[c] = clamp01(ch)
	}

	compactIndices := make([]uint32, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		if !t.Alive {
			continue
		}
		compactIndices = append(compactIndices,
			uint32(oldToCompact[t.V[0]]),
			uint32(oldToCompact[t.V[1]]),
			uint32(oldToCompact[t.V[2]]),
		)
	}

	cacheOrdered := optimizeVertexCache(compactIndices, len(aliveOld))
	finalIndices, compactToFinal := optimizeVertexFetch(cacheOrdered, len(aliveOld))

	qu := make([]uint16, len(aliveOld))
	qv := make([]uint16, len(aliveOld))
	qh := make([]uint16, len(aliveOld))
	for c := 0; c < len(aliveOld); c++ {
		f := compactToFinal[c]
		qu[f] = quantize16(u[c])
		qv[f] = quantize16(v[c])
		qh[f] = quantize16(h[c])
	}

	oldToFinal := make(map[int32]uint32, len(aliveOld))
	for c, old := range aliveOld {
		oldToFinal[old] = compactToFinal[c]
	}

	return quantizeResult{
		U: qu, V: qv, H: qh,
		Indices:       finalIndices,
		OldToFinal:    oldToFinal,
		ClampWarnings: warnings,
	}
}

func clamp01(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func quantize16(c float64) uint16 {
	return uint16(math.Round(c * quantizeMax))
}

// dequantize16 maps a quantized coordinate back to normalized [0,1]; used
// by tests asserting the round-trip invariant (spec.md §8, invariant 4).
func dequantize16(q uint16) float64 {
	return float64(q) / quantizeMax
}

// optimizeVertexCache reorders a triangle index list (values are compact
// vertex indices, three per triangle) to favor a fixed-size LRU vertex
// cache, using a simplified Forsyth-style greedy scorer: at each step the
// triangle whose three vertices currently score highest (a function of
// cache recency and remaining valence) is emitted next.
func optimizeVertexCache(indices []uint32, vertexCount int) []uint32 {
	numTris := len(indices) / 3
	if numTris == 0 {
		return indices
	}

	incident := make([][]int32, vertexCount)
	for t := 0; t < numTris; t++ {
		for k := 0; k < 3; k++ {
			vtx := indices[t*3+k]
			incident[vtx] = append(incident[vtx], int32(t))
		}
	}

	active := make([]bool, numTris)
	for i := range active {
		active[i] = true
	}

	cachePos := make([]int, vertexCount)
	for i := range cachePos {
		cachePos[i] = -1
	}
	cache := make([]uint32, 0, vertexCacheSize+3)

	score := func(vtx uint32) float64 {
		s := 0.0
		if pos := cachePos[vtx]; pos >= 0 {
			if pos < 3 {
				s = 0.75
			} else {
				s = math.Pow(float64(vertexCacheSize-pos)/float64(vertexCacheSize-3), 1.5)
			}
		}
		if valence := len(incident[vtx]); valence > 0 {
			s += 2.0 * math.Pow(float64(valence), -0.5)
		}
		return s
	}

	triScore := func(t int32) float64 {
		return score(indices[t*3]) + score(indices[t*3+1]) + score(indices[t*3+2])
	}

	out := make([]uint32, 0, len(indices))
	remaining := numTris

	for remaining > 0 {
		best := int32(-1)
		bestScore := -1.0
		for t := 0; t < numTris; t++ {
			if !active[t] {
				continue
			}
			if s := triScore(int32(t)); s > bestScore {
				bestScore = s
				best = int32(t)
			}
		}
		if best < 0 {
			break
		}
		active[best] = false
		remaining--

		for k := 0; k < 3; k++ {
			vtx := indices[best*3+int32(k)]
			out = append(out, vtx)

			inc := incident[vtx]
			for i, t := range inc {
				if t == best {
					inc = append(inc[:i], inc[i+1:]...)
					break
				}
			}
			incident[vtx] = inc

			if pos := cachePos[vtx]; pos >= 0 {
				cache = append(cache[:pos], cache[pos+1:]...)
			}
			cache = append([]uint32{vtx}, cache...)
			if len(cache) > vertexCacheSize {
				evicted := cache[vertexCacheSize]
				cache = cache[:vertexCacheSize]
				cachePos[evicted] = -1
			}
			for i, cv := range cache {
				cachePos[cv] = i
			}
		}
	}

	return out
}

// optimizeVertexFetch renumbers vertices to the order their first use
// appears in indices, so that a linear sweep of the vertex buffer during
// rendering follows the index stream monotonically (spec.md §4.6 step
// 5). Returns the reindexed triangle list and the compact->final remap.
func optimizeVertexFetch(indices []uint32, vertexCount int) ([]uint32, []uint32) {
	const unset = math.MaxUint32
	remap := make([]uint32, vertexCount)
	for i := range remap {
		remap[i] = unset
	}

	next := uint32(0)
	out := make([]uint32, len(indices))
	for i, vtx := range indices {
		if remap[vtx] == unset {
			remap[vtx] = next
			next++
		}
		out[i] = remap[vtx]
	}

	// Any vertex never referenced by a live triangle (shouldn't normally
	// occur post-simplification, but guards against it) gets appended
	// past the referenced range so every compact index still has a
	// final slot.
	for c := 0; c < vertexCount; c++ {
		if remap[c] == unset {
			remap[c] = next
			next++
		}
	}

	return out, remap
}
