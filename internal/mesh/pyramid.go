package mesh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// defaultTileSize is the raster window size sampled per tile (spec.md
// §3: "typically 65x65 for this format").
const defaultTileSize = 65

// BuildZoom is the core pipeline's single entry point (spec.md §6): it
// iterates zoom levels startZoom..endZoom inclusive, and within each
// zoom drives tile construction so that every tile's west/south borders
// are wired to its already-committed neighbors (spec.md §4.7).
//
// ProjectionError is checked once, before any tile is processed, and is
// fatal (spec.md §7). Per-tile RasterReadError/MeshInvariantError are
// logged and do not stop the pyramid.
func BuildZoom(ctx context.Context, cfg Config, raster RasterAdapter, grid GridAdapter, geo GeodeticAdapter, writer TileWriter, log Logger) error {
	bc := &buildContext{ctx: ctx, cfg: cfg, raster: raster, grid: grid, geo: geo, writer: writer, log: orNoop(log)}

	epsg, err := raster.Projection()
	if err != nil {
		return fmt.Errorf("reading raster projection: %w", err)
	}
	if epsg != 4326 {
		return fmt.Errorf("%w: raster EPSG:%d, expected EPSG:4326", ErrProjection, epsg)
	}

	for zoom := cfg.StartZoom; zoom <= cfg.EndZoom; zoom++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := buildOneZoom(bc, zoom); err != nil {
			return fmt.Errorf("zoom %d: %w", zoom, err)
		}
	}
	return nil
}

// buildOneZoom sequences tile construction for one zoom level along the
// anti-diagonal wavefront schedule described in spec.md §5: tile (x,y)
// depends only on (x-1,y) and (x,y-1), both of which lie on the previous
// diagonal x+y-1, so every tile on one diagonal can be built
// concurrently once the previous diagonal has completed.
func buildOneZoom(bc *buildContext, zoom int) error {
	x0, y0, x1, y1 := bc.grid.TileRange(zoom, bc.raster.Bounds())
	width := x1 - x0 + 1
	height := y1 - y0 + 1
	if width <= 0 || height <= 0 {
		return nil
	}

	// west[x][y] / south[x][y] are the packets tile (x,y) will consume,
	// indexed relative to (x0,y0). Populated by the east/north emission
	// of (x-1,y) and (x,y-1) respectively as those complete.
	west := make([][]*BorderVertexPacket, width)
	south := make([][]*BorderVertexPacket, width)
	for i := range west {
		west[i] = make([]*BorderVertexPacket, height)
		south[i] = make([]*BorderVertexPacket, height)
	}

	workers := bc.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var tilesDone atomic.Int64
	total := int64(width) * int64(height)

	for d := 0; d < width+height-1; d++ {
		type job struct{ x, y int }
		var jobs []job
		for x := 0; x < width; x++ {
			y := d - x
			if y < 0 || y >= height {
				continue
			}
			jobs = append(jobs, job{x, y})
		}
		if len(jobs) == 0 {
			continue
		}

		sem := make(chan struct{}, workers)
		errCh := make(chan error, len(jobs))
		var wg sync.WaitGroup

		for _, j := range jobs {
			if err := bc.ctx.Err(); err != nil {
				return err
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(x, y int) {
				defer wg.Done()
				defer func() { <-sem }()

				coord := TileCoord{Zoom: zoom, X: x0 + x, Y: y0 + y}
				w := west[x][y]
				if w == nil {
					w = &BorderVertexPacket{Side: West}
				}
				s := south[x][y]
				if s == nil {
					s = &BorderVertexPacket{Side: South}
				}

				east, north, err := buildTile(bc, coord, w, s)
				if err != nil {
					errCh <- fmt.Errorf("tile %s: %w", coord, err)
					return
				}
				if x+1 < width {
					west[x+1][y] = east
				}
				if y+1 < height {
					south[x][y+1] = north
				}
				tilesDone.Add(1)
			}(j.x, j.y)
		}

		wg.Wait()
		close(errCh)
		for err := range errCh {
			// RasterReadError and MeshInvariantError are per-tile soft
			// failures (spec.md §7): log and continue with the rest of
			// the pyramid rather than aborting the zoom.
			bc.log.Errorw("tile build failed", "error", err)
		}
	}

	bc.log.Infow("zoom complete", "zoom", zoom, "tiles", tilesDone.Load(), "total", total)
	return nil
}

// buildTile runs the full per-tile pipeline: sample, inherit, triangulate,
// simplify, classify borders, quantize, compute geometry, and write.
// Returns the east/north packets for the tiles one column east and one
// row north.
func buildTile(bc *buildContext, coord TileCoord, west, south *BorderVertexPacket) (east, north *BorderVertexPacket, err error) {
	bounds := bc.grid.Bounds(coord)

	heights, err := bc.raster.ReadWindow(bounds, defaultTileSize, defaultTileSize)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRasterRead, err)
	}
	if len(heights) != defaultTileSize*defaultTileSize {
		return nil, nil, fmt.Errorf("%w: got %d samples, want %d", ErrRasterRead, len(heights), defaultTileSize*defaultTileSize)
	}

	samples, minH, maxH := sampleRaster(heights, defaultTileSize, defaultTileSize, bounds, !west.Empty(), !south.Empty())
	samples, minH, maxH = foldInherited(west, defaultTileSize, defaultTileSize, bounds, samples, minH, maxH)
	samples, minH, maxH = foldInherited(south, defaultTileSize, defaultTileSize, bounds, samples, minH, maxH)

	heightRange := maxH - minH
	verts := make([]meshVertex, len(samples))
	for i, s := range samples {
		u := s.Local.X / float64(defaultTileSize-1)
		v := s.Local.Y / float64(defaultTileSize-1)
		var h float64
		if heightRange != 0 {
			h = (s.Local.Z - minH) / heightRange
		}
		isCorner := (u == 0 || u == 1) && (v == 0 || v == 1)
		constrained := isCorner && bc.cfg.PreserveCorners
		verts[i] = meshVertex{U: u, V: v, H: h, Constrained: constrained, Alive: true}
	}

	m := triangulate(verts)

	bcSides := borderConstraint{West: !west.Empty(), South: !south.Empty()}
	populateConstrainedEdges(m, bcSides)

	stopRatio := bc.cfg.StopRatio
	if stopRatio <= 0 {
		stopRatio = 0.05
	}
	simplify(m, stopRatio, bcSides)

	sides, eastPkt, northPkt, classifyErr := classifyBorder(m, defaultTileSize, defaultTileSize, minH, maxH)
	if classifyErr != nil {
		bc.log.Warnw("mesh invariant", "tile", coord.String(), "error", classifyErr)
	}

	qr := quantizeMesh(m)
	if qr.ClampWarnings > 0 {
		bc.log.Warnw("bounds clamp", "tile", coord.String(), "error", fmt.Errorf("%w: %d vertices outside [0,1] clamped", ErrBoundsClamp, qr.ClampWarnings))
	}

	edgeLists := map[Side][]uint32{}
	for oldIdx, sideList := range sides {
		final, ok := qr.OldToFinal[oldIdx]
		if !ok {
			continue
		}
		for _, s := range sideList {
			edgeLists[s] = append(edgeLists[s], final)
		}
	}

	center, sphereCenter, sphereRadius, hop := tileGeometry(bc.geo, samples)

	tile := &QuantizedTile{
		Header: TileHeader{
			MinHeight:             minH,
			MaxHeight:             maxH,
			Center:                center,
			BoundingSphereCenter:  sphereCenter,
			BoundingSphereRadius:  sphereRadius,
			HorizonOcclusionPoint: hop,
		},
		U: qr.U, V: qr.V, H: qr.H,
		Indices: qr.Indices,
		West:    edgeLists[West],
		South:   edgeLists[South],
		East:    edgeLists[East],
		North:   edgeLists[North],
	}

	if err := bc.writer.Write(coord, tile); err != nil {
		bc.log.Errorw("tile write failed", "tile", coord.String(), "error", err)
	}

	return eastPkt, northPkt, nil
}

// populateConstrainedEdges marks every triangle edge lying entirely on a
// border whose packet is non-empty as constrained (spec.md §4.4 step 6):
// the neighbor has already committed to those vertices, so the edge
// between them must never collapse.
func populateConstrainedEdges(m *polyMesh, bc borderConstraint) {
	for e := range m.allEdges() {
		a, b := m.Vertices[e.A], m.Vertices[e.B]
		if bc.West && a.U == 0 && b.U == 0 {
			m.ConstrainedEdges[e] = true
		}
		if bc.South && a.V == 0 && b.V == 0 {
			m.ConstrainedEdges[e] = true
		}
	}
}
