package mesh

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// planeRaster serves a deterministic tilted-plane elevation surface over
// the whole globe, so every tile's ReadWindow call can be answered without
// a real file.
type planeRaster struct{}

func (planeRaster) Projection() (int, error) { return 4326, nil }

func (planeRaster) Bounds() GeographicBounds {
	return GeographicBounds{MinLon: -180, MinLat: -90, MaxLon: 180, MaxLat: 90}
}

func (planeRaster) ReadWindow(bounds GeographicBounds, w, h int) ([]float32, error) {
	out := make([]float32, w*h)
	for j := 0; j < h; j++ {
		lat := bounds.MaxLat - (bounds.MaxLat-bounds.MinLat)*float64(j)/float64(h-1)
		for i := 0; i < w; i++ {
			lon := bounds.MinLon + (bounds.MaxLon-bounds.MinLon)*float64(i)/float64(w-1)
			out[j*w+i] = float32(lon + lat)
		}
	}
	return out, nil
}

// fixedGrid places exactly a 2x1 tile range at every requested zoom,
// covering the raster's full bounds split at the antimeridian.
type fixedGrid struct{}

func (fixedGrid) Bounds(coord TileCoord) GeographicBounds {
	if coord.X == 0 {
		return GeographicBounds{MinLon: -180, MinLat: -90, MaxLon: 0, MaxLat: 90}
	}
	return GeographicBounds{MinLon: 0, MinLat: -90, MaxLon: 180, MaxLat: 90}
}

func (fixedGrid) TileRange(zoom int, bounds GeographicBounds) (x0, y0, x1, y1 int) {
	return 0, 0, 1, 0
}

type recordingWriter struct {
	mu    sync.Mutex
	tiles map[string]*QuantizedTile
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{tiles: make(map[string]*QuantizedTile)}
}

func (w *recordingWriter) Write(coord TileCoord, tile *QuantizedTile) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tiles[coord.String()] = tile
	return nil
}

func TestBuildZoomRejectsWrongProjection(t *testing.T) {
	bad := wrongProjectionRaster{}
	err := BuildZoom(context.Background(), Config{StartZoom: 0, EndZoom: 0, StopRatio: 0.5, Workers: 1}, bad, fixedGrid{}, identityGeodetic{}, newRecordingWriter(), nil)
	if err == nil {
		t.Fatal("expected an error for a non-EPSG:4326 raster")
	}
}

type wrongProjectionRaster struct{ planeRaster }

func (wrongProjectionRaster) Projection() (int, error) { return 3857, nil }

func TestBuildZoomWritesAllTiles(t *testing.T) {
	writer := newRecordingWriter()
	cfg := Config{StartZoom: 0, EndZoom: 0, StopRatio: 0.5, PreserveCorners: true, Workers: 2}

	err := BuildZoom(context.Background(), cfg, planeRaster{}, fixedGrid{}, identityGeodetic{}, writer, nil)
	if err != nil {
		t.Fatalf("BuildZoom: %v", err)
	}

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if len(writer.tiles) != 2 {
		t.Fatalf("expected 2 tiles written, got %d", len(writer.tiles))
	}
	for _, coord := range []string{"0/0/0", "0/1/0"} {
		tile, ok := writer.tiles[coord]
		if !ok {
			t.Fatalf("tile %s not written", coord)
		}
		if len(tile.U) == 0 {
			t.Errorf("tile %s has no vertices", coord)
		}
		if len(tile.Indices) == 0 {
			t.Errorf("tile %s has no indices", coord)
		}
	}
}

func TestBuildZoomEastBordersBecomeNextTileWestBorders(t *testing.T) {
	// The west tile's east border and the east tile's west border must
	// agree in count: buildOneZoom feeds one directly into the other.
	var mu sync.Mutex
	var eastLen, westLen int
	captured := 0

	writer := capturingWriter{fn: func(coord TileCoord, tile *QuantizedTile) {
		mu.Lock()
		defer mu.Unlock()
		if coord.X == 0 {
			eastLen = len(tile.East)
		} else {
			westLen = len(tile.West)
		}
		captured++
	}}

	cfg := Config{StartZoom: 0, EndZoom: 0, StopRatio: 0.5, PreserveCorners: true, Workers: 1}
	if err := BuildZoom(context.Background(), cfg, planeRaster{}, fixedGrid{}, identityGeodetic{}, writer, nil); err != nil {
		t.Fatalf("BuildZoom: %v", err)
	}

	if captured != 2 {
		t.Fatalf("expected 2 tiles captured, got %d", captured)
	}
	if eastLen == 0 {
		t.Error("west tile (x=0) emitted an empty east border")
	}
	if westLen != eastLen {
		t.Errorf("east tile's west border (%d points) does not match west tile's east border (%d points)", westLen, eastLen)
	}
}

type capturingWriter struct {
	fn func(TileCoord, *QuantizedTile)
}

func (w capturingWriter) Write(coord TileCoord, tile *QuantizedTile) error {
	w.fn(coord, tile)
	return nil
}

func TestBuildZoomPropagatesContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{StartZoom: 0, EndZoom: 0, StopRatio: 0.5, Workers: 1}
	err := BuildZoom(ctx, cfg, planeRaster{}, fixedGrid{}, identityGeodetic{}, newRecordingWriter(), nil)
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
}

// wrongSizeRaster always returns a window one sample short of the
// requested w x h, exercising spec.md §7/§8's "raster window whose width
// or height is not the expected tile size" boundary scenario.
type wrongSizeRaster struct{ planeRaster }

func (wrongSizeRaster) ReadWindow(bounds GeographicBounds, w, h int) ([]float32, error) {
	return make([]float32, w*h-1), nil
}

func TestBuildTileSurfacesRasterReadErrorOnMisSizedWindow(t *testing.T) {
	bc := &buildContext{
		ctx:    context.Background(),
		cfg:    Config{StopRatio: 0.5, PreserveCorners: true},
		raster: wrongSizeRaster{},
		grid:   fixedGrid{},
		geo:    identityGeodetic{},
		writer: newRecordingWriter(),
		log:    orNoop(nil),
	}

	_, _, err := buildTile(bc, TileCoord{Zoom: 0, X: 0, Y: 0}, &BorderVertexPacket{Side: West}, &BorderVertexPacket{Side: South})
	if err == nil {
		t.Fatal("expected an error for a mis-sized raster window")
	}
	if !errors.Is(err, ErrRasterRead) {
		t.Errorf("expected errors.Is(err, ErrRasterRead), got %v", err)
	}
}

func TestPopulateConstrainedEdgesMarksWestEdges(t *testing.T) {
	m := newPolyMesh()
	a := m.addVertex(0, 0, 0, false)
	b := m.addVertex(0, 1, 0, false)
	c := m.addVertex(1, 0, 0, false)
	m.addTriangle(a, b, c)

	populateConstrainedEdges(m, borderConstraint{West: true})

	if !m.ConstrainedEdges[makeEdgeKey(a, b)] {
		t.Error("expected the west-border edge (U=0 both ends) to be constrained")
	}
	if m.ConstrainedEdges[makeEdgeKey(a, c)] {
		t.Error("did not expect the non-west edge to be constrained")
	}
}
