package cog

import (
	"fmt"
	"sync"
)

// ErrNotGeographic is returned by RequireGeographic when a raster's
// detected EPSG code is not 4326. Reprojection is out of scope: the
// caller rejects the raster rather than reprojecting it on the fly.
var ErrNotGeographic = fmt.Errorf("raster is not in geographic WGS84 (EPSG:4326)")

// RequireGeographic reports the raster's EPSG code and fails if it is
// anything other than 4326. This is the fatal, before-the-pyramid-starts
// check; there is no reprojection path in this package.
func (r *Reader) RequireGeographic() error {
	if r.EPSG() != 4326 {
		return fmt.Errorf("%s: %w (got EPSG:%d)", r.path, ErrNotGeographic, r.EPSG())
	}
	return nil
}

// floatTileCache caches decoded float32 source tiles, keyed the same way
// as TileCache but holding raw sample slices instead of image.Image.
type floatTileCache struct {
	mu    sync.Mutex
	cache map[tileKey]floatTile
}

type floatTile struct {
	samples []float32
	w, h    int
}

func newFloatTileCache() *floatTileCache {
	return &floatTileCache{cache: make(map[tileKey]floatTile, 64)}
}

func (fc *floatTileCache) get(path string, level, col, row int) (floatTile, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	t, ok := fc.cache[tileKey{path: path, level: level, col: col, row: row}]
	return t, ok
}

func (fc *floatTileCache) put(path string, level, col, row int, t floatTile) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	// Unbounded for the lifetime of one ReadElevationWindow call; the
	// Reader-level cache is per-window, not shared across the pyramid,
	// since neighboring tiles in a pyramid rarely touch the same source
	// tile once the raster is much larger than one output tile.
	fc.cache[tileKey{path: path, level: level, col: col, row: row}] = t
}

// elevationAt samples the raster at a full-resolution pixel coordinate,
// clamped to the raster extent, reading through fc so repeated samples
// within the same source tile during a window read decode it once.
func (r *Reader) elevationAt(fc *floatTileCache, px, py int) (float32, error) {
	px = clampInt(px, 0, r.Width()-1)
	py = clampInt(py, 0, r.Height()-1)

	ifd := &r.ifds[0]
	tw, th := int(ifd.TileWidth), int(ifd.TileHeight)
	if tw <= 0 || th <= 0 {
		return 0, fmt.Errorf("%s: degenerate tile size %dx%d", r.path, tw, th)
	}
	col, row := px/tw, py/th
	local := py%th*tw + px%tw

	if t, ok := fc.get(r.path, 0, col, row); ok {
		if local < 0 || local >= len(t.samples) {
			return 0, nil
		}
		return t.samples[local], nil
	}

	data, decodedIFD, err := r.readTileRaw(0, col, row)
	if err != nil {
		return 0, fmt.Errorf("%s: reading source tile (%d,%d): %w", r.path, col, row, err)
	}
	if data == nil {
		fc.put(r.path, 0, col, row, floatTile{w: tw, h: th})
		return 0, nil
	}
	samples, w, h, err := r.decodeRawFloat32Tile(decodedIFD, data)
	if err != nil {
		return 0, fmt.Errorf("%s: decoding source tile (%d,%d): %w", r.path, col, row, err)
	}
	fc.put(r.path, 0, col, row, floatTile{samples: samples, w: w, h: h})
	if local < 0 || local >= len(samples) {
		return 0, nil
	}
	return samples[local], nil
}

// ReadElevationWindow resamples a geographic window of the raster's first
// band into an outW x outH grid of float32 elevations using bilinear
// interpolation. Row 0 of the result is the window's northern edge
// (maxLat), matching the raster's natural top-left origin; callers that
// need bottom-left tile-local origin (RasterTile, per spec) flip rows
// themselves.
//
// Returns an error wrapping ErrNotGeographic if the raster's EPSG is not
// 4326, or a wrapped decode error if any constituent source tile fails to
// read.
func (r *Reader) ReadElevationWindow(minLon, minLat, maxLon, maxLat float64, outW, outH int) ([]float32, error) {
	if err := r.RequireGeographic(); err != nil {
		return nil, err
	}
	if outW <= 0 || outH <= 0 {
		return nil, fmt.Errorf("%s: invalid output window size %dx%d", r.path, outW, outH)
	}

	crsMinX, crsMinY, crsMaxX, crsMaxY := r.BoundsInCRS()
	width, height := r.Width(), r.Height()

	lonToPx := func(lon float64) float64 {
		return (lon - crsMinX) / (crsMaxX - crsMinX) * float64(width)
	}
	latToPy := func(lat float64) float64 {
		// Raster rows increase downward (north to south); maxY is the
		// northern edge.
		return (crsMaxY - lat) / (crsMaxY - crsMinY) * float64(height)
	}

	fc := newFloatTileCache()
	out := make([]float32, outW*outH)

	for j := 0; j < outH; j++ {
		lat := maxLat - (maxLat-minLat)*float64(j)/float64(outH-1)
		fy := latToPy(lat)
		y0 := int(fy)
		ty := fy - float64(y0)

		for i := 0; i < outW; i++ {
			lon := minLon + (maxLon-minLon)*float64(i)/float64(outW-1)
			fx := lonToPx(lon)
			x0 := int(fx)
			tx := fx - float64(x0)

			v00, err := r.elevationAt(fc, x0, y0)
			if err != nil {
				return nil, err
			}
			v10, err := r.elevationAt(fc, x0+1, y0)
			if err != nil {
				return nil, err
			}
			v01, err := r.elevationAt(fc, x0, y0+1)
			if err != nil {
				return nil, err
			}
			v11, err := r.elevationAt(fc, x0+1, y0+1)
			if err != nil {
				return nil, err
			}

			top := float64(v00) + (float64(v10)-float64(v00))*tx
			bottom := float64(v01) + (float64(v11)-float64(v01))*tx
			out[j*outW+i] = float32(top + (bottom-top)*ty)
		}
	}

	return out, nil
}
