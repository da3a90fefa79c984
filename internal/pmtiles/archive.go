package pmtiles

import (
	"fmt"

	"github.com/coronis-gis/qmeshtiler/internal/cog"
	"github.com/coronis-gis/qmeshtiler/internal/mesh"
	"github.com/coronis-gis/qmeshtiler/internal/terrainio"
)

// ArchiveTileWriter packages a quantized-mesh tile pyramid into a single
// PMTiles v3 archive instead of a loose {zoom}/{x}/{y}.terrain directory
// tree. PMTiles defines no quantized-mesh tile type, so tiles are stored
// as TileTypeUnknown opaque blobs; clients that understand the archive's
// declared "terrain" metadata type decode them as quantized-mesh.
type ArchiveTileWriter struct {
	w *Writer
}

// NewArchiveTileWriter opens outPath for writing and configures the
// archive's zoom range and geographic bounds, both required by the
// PMTiles v3 header.
func NewArchiveTileWriter(outPath string, minZoom, maxZoom int, bounds cog.Bounds) (*ArchiveTileWriter, error) {
	w, err := NewWriter(outPath, WriterOptions{
		MinZoom:     minZoom,
		MaxZoom:     maxZoom,
		Bounds:      bounds,
		TileFormat:  TileTypeUnknown,
		Type:        "terrain",
		Name:        "qmeshtiler",
		Description: "Quantized-mesh terrain pyramid",
	})
	if err != nil {
		return nil, fmt.Errorf("opening pmtiles archive %s: %w", outPath, err)
	}
	return &ArchiveTileWriter{w: w}, nil
}

// Write implements mesh.TileWriter: it encodes the tile to its wire form
// and appends it to the archive. Safe for concurrent use (Writer.WriteTile
// is).
func (a *ArchiveTileWriter) Write(coord mesh.TileCoord, tile *mesh.QuantizedTile) error {
	data, err := terrainio.Encode(tile)
	if err != nil {
		return fmt.Errorf("encoding tile %s: %w", coord, err)
	}
	return a.w.WriteTile(coord.Zoom, coord.X, coord.Y, data)
}

// Close finalizes the archive: builds its directory and metadata and
// writes the assembled file. Must be called exactly once, after every
// zoom level has finished writing.
func (a *ArchiveTileWriter) Close() error {
	return a.w.Finalize()
}

var _ mesh.TileWriter = (*ArchiveTileWriter)(nil)
