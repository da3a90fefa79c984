package mesh

// sampleRaster implements RasterSampler (spec.md §4.1): for each raster
// grid cell (i,j), with i a column index and j a raster row index (0 at
// the northern edge, per RasterAdapter.ReadWindow's contract), it emits
// a tile-local sample at (i, H-1-j, h) — the vertical flip from raster's
// top-left origin to the tile's bottom-left origin — paired with the
// geographic position interpolated from bounds.
//
// When skipWestCol is set, column i==0 is omitted (an inherited western
// packet will supply those points instead); when skipSouthRow is set,
// the tile-local row y==0 (raster row j==H-1) is omitted likewise. This
// prevents the raster-derived grid from duplicating inherited vertices
// at the same geographic positions.
func sampleRaster(heights []float32, w, h int, bounds GeographicBounds, skipWestCol, skipSouthRow bool) (samples []GeoSample, minH, maxH float64) {
	minH, maxH = 0, 0
	first := true

	for j := 0; j < h; j++ {
		localY := float64(h - 1 - j)
		if skipSouthRow && localY == 0 {
			continue
		}
		for i := 0; i < w; i++ {
			if skipWestCol && i == 0 {
				continue
			}
			height := float64(heights[j*w+i])
			if first {
				minH, maxH = height, height
				first = false
			} else {
				if height < minH {
					minH = height
				}
				if height > maxH {
					maxH = height
				}
			}

			samples = append(samples, GeoSample{
				Local: Point3{X: float64(i), Y: localY, Z: height},
				Lon:   bounds.Lon(float64(i), w),
				Lat:   bounds.Lat(localY, h),
			})
		}
	}
	return samples, minH, maxH
}

// foldInherited implements BorderInheritor (spec.md §4.2): folds a
// west/south packet, already expressed in the current tile's incoming
// tile-local coordinate system, into the geographic sample set, updating
// min/max height as it goes.
func foldInherited(packet *BorderVertexPacket, w, h int, bounds GeographicBounds, samples []GeoSample, minH, maxH float64) ([]GeoSample, float64, float64) {
	if packet.Empty() {
		return samples, minH, maxH
	}
	for _, p := range packet.Points {
		if p.Z < minH {
			minH = p.Z
		}
		if p.Z > maxH {
			maxH = p.Z
		}
		samples = append(samples, GeoSample{
			Local: p,
			Lon:   bounds.Lon(p.X, w),
			Lat:   bounds.Lat(p.Y, h),
		})
	}
	return samples, minH, maxH
}
