package grid

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/coronis-gis/qmeshtiler/internal/mesh"
)

// MercatorGrid implements the EPSG:3857 Web Mercator TMS profile on top
// of github.com/paulmach/orb/maptile. This is not Cesium's native tile
// layout (Cesium expects GeodeticGrid); it exists for pyramids that must
// align with an existing Mercator raster/vector tile set.
type MercatorGrid struct{}

// Bounds returns the geographic extent of tile (zoom, x, y).
func (MercatorGrid) Bounds(coord mesh.TileCoord) mesh.GeographicBounds {
	t := maptile.New(uint32(coord.X), uint32(coord.Y), maptile.Zoom(coord.Zoom))
	b := t.Bound()
	return mesh.GeographicBounds{
		MinLon: b.Min.Lon(),
		MinLat: b.Min.Lat(),
		MaxLon: b.Max.Lon(),
		MaxLat: b.Max.Lat(),
	}
}

// TileRange returns the inclusive tile-x/tile-y range covering bounds at
// the given zoom.
func (g MercatorGrid) TileRange(zoom int, bounds mesh.GeographicBounds) (x0, y0, x1, y1 int) {
	// Nudge both corners inward so bounds ending exactly on a tile edge
	// do not pull in the neighboring tile.
	const eps = 1e-9
	nw := maptile.At(orb.Point{bounds.MinLon + eps, bounds.MaxLat - eps}, maptile.Zoom(zoom))
	se := maptile.At(orb.Point{bounds.MaxLon - eps, bounds.MinLat + eps}, maptile.Zoom(zoom))
	return int(nw.X), int(nw.Y), int(se.X), int(se.Y)
}
