package pmtiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coronis-gis/qmeshtiler/internal/cog"
	"github.com/coronis-gis/qmeshtiler/internal/mesh"
)

func sampleQuantizedTile() *mesh.QuantizedTile {
	return &mesh.QuantizedTile{
		Header: mesh.TileHeader{
			MinHeight: 10, MaxHeight: 200,
			Center:                [3]float64{1, 2, 3},
			BoundingSphereCenter:  [3]float64{1, 2, 3},
			BoundingSphereRadius:  1000,
			HorizonOcclusionPoint: [3]float64{4, 5, 6},
		},
		U:       []uint16{0, 32767, 0, 32767},
		V:       []uint16{0, 0, 32767, 32767},
		H:       []uint16{0, 10000, 20000, 32767},
		Indices: []uint32{0, 1, 2, 1, 3, 2},
		West:    []uint32{0, 2},
		South:   []uint32{0, 1},
		East:    []uint32{1, 3},
		North:   []uint32{2, 3},
	}
}

func TestArchiveTileWriterRoundTrips(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "pyramid.pmtiles")
	bounds := cog.Bounds{MinLon: -10, MinLat: -10, MaxLon: 10, MaxLat: 10}

	a, err := NewArchiveTileWriter(outPath, 0, 1, bounds)
	if err != nil {
		t.Fatalf("NewArchiveTileWriter: %v", err)
	}

	coords := []mesh.TileCoord{
		{Zoom: 0, X: 0, Y: 0},
		{Zoom: 0, X: 1, Y: 0},
		{Zoom: 1, X: 0, Y: 0},
	}
	for _, c := range coords {
		if err := a.Write(c, sampleQuantizedTile()); err != nil {
			t.Fatalf("Write(%s): %v", c, err)
		}
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("stat archive: %v", err)
	}
	if info.Size() < HeaderSize {
		t.Fatalf("archive file too small: %d bytes", info.Size())
	}
}

func TestArchiveTileWriterSatisfiesTileWriter(t *testing.T) {
	var _ mesh.TileWriter = (*ArchiveTileWriter)(nil)
}
