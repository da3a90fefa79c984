package terrainio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/coronis-gis/qmeshtiler/internal/mesh"
)

// FileTileWriter writes quantized-mesh tiles under
// {outDir}/{zoom}/{x}/{y}.terrain.
type FileTileWriter struct {
	OutDir string
}

// Write encodes tile and writes it to its pyramid path, creating parent
// directories as needed.
func (w FileTileWriter) Write(coord mesh.TileCoord, tile *mesh.QuantizedTile) error {
	data, err := Encode(tile)
	if err != nil {
		return fmt.Errorf("encoding tile %s: %w", coord, err)
	}

	dir := filepath.Join(w.OutDir, strconv.Itoa(coord.Zoom), strconv.Itoa(coord.X))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, strconv.Itoa(coord.Y)+".terrain")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
