package cog

import "github.com/coronis-gis/qmeshtiler/internal/mesh"

// RasterAdapter wraps a Reader to satisfy mesh.RasterAdapter, translating
// between the mesh package's GeographicBounds and this package's
// BoundsInCRS/ReadElevationWindow primitives.
type RasterAdapter struct {
	Reader *Reader
}

// Projection reports the raster's detected EPSG code.
func (a RasterAdapter) Projection() (int, error) {
	return a.Reader.EPSG(), nil
}

// Bounds reports the raster's full geographic extent.
func (a RasterAdapter) Bounds() mesh.GeographicBounds {
	minX, minY, maxX, maxY := a.Reader.BoundsInCRS()
	return mesh.GeographicBounds{MinLon: minX, MinLat: minY, MaxLon: maxX, MaxLat: maxY}
}

// ReadWindow resamples the raster's first band over bounds into a w x h
// grid of float32 elevations.
func (a RasterAdapter) ReadWindow(bounds mesh.GeographicBounds, w, h int) ([]float32, error) {
	return a.Reader.ReadElevationWindow(bounds.MinLon, bounds.MinLat, bounds.MaxLon, bounds.MaxLat, w, h)
}
