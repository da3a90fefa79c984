// Package grid implements the Grid adapter (spec.md §6): conversion
// between tile coordinates and geographic bounds. Two TMS profiles are
// provided: GeodeticGrid, the Global Geodetic profile Cesium clients
// expect by default, and MercatorGrid, a Web Mercator profile for
// pyramids consumed by non-Cesium tooling.
package grid

import "github.com/coronis-gis/qmeshtiler/internal/mesh"

// GeodeticGrid implements the Global Geodetic TMS profile: zoom 0 has
// two tiles across the full longitude range (-180..180) and one tile
// across the full latitude range (-90..90); each subsequent zoom level
// doubles the tile count along both axes. This matches the layout
// Cesium's terrain provider assumes by default.
type GeodeticGrid struct{}

// Bounds returns the geographic extent of tile (zoom, x, y).
func (GeodeticGrid) Bounds(coord mesh.TileCoord) mesh.GeographicBounds {
	tilesX := 1 << uint(coord.Zoom+1) // 2 tiles wide at zoom 0
	tilesY := 1 << uint(coord.Zoom)   // 1 tile tall at zoom 0

	lonSpan := 360.0 / float64(tilesX)
	latSpan := 180.0 / float64(tilesY)

	minLon := -180.0 + float64(coord.X)*lonSpan
	minLat := -90.0 + float64(coord.Y)*latSpan

	return mesh.GeographicBounds{
		MinLon: minLon,
		MinLat: minLat,
		MaxLon: minLon + lonSpan,
		MaxLat: minLat + latSpan,
	}
}

// TileRange returns the inclusive tile-x/tile-y range covering bounds at
// the given zoom.
func (g GeodeticGrid) TileRange(zoom int, bounds mesh.GeographicBounds) (x0, y0, x1, y1 int) {
	tilesX := 1 << uint(zoom+1)
	tilesY := 1 << uint(zoom)

	lonSpan := 360.0 / float64(tilesX)
	latSpan := 180.0 / float64(tilesY)

	x0 = clampInt(int((bounds.MinLon+180.0)/lonSpan), 0, tilesX-1)
	x1 = clampInt(int((bounds.MaxLon+180.0-1e-9)/lonSpan), 0, tilesX-1)
	y0 = clampInt(int((bounds.MinLat+90.0)/latSpan), 0, tilesY-1)
	y1 = clampInt(int((bounds.MaxLat+90.0-1e-9)/latSpan), 0, tilesY-1)
	return
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
