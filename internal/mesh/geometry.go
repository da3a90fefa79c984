package mesh

// tileGeometry implements TileGeometry (spec.md §4.3): from the
// geographic samples, compute ECEF coordinates via the injected
// GeodeticAdapter and derive the tile's bounding box center, minimum
// bounding sphere, and horizon occlusion point.
func tileGeometry(geo GeodeticAdapter, samples []GeoSample) (center [3]float64, sphereCenter [3]float64, sphereRadius float64, hop [3]float64) {
	if len(samples) == 0 {
		return
	}

	ecef := make([][3]float64, len(samples))
	minX, minY, minZ := samples[0].Local.Z, samples[0].Local.Z, samples[0].Local.Z
	maxX, maxY, maxZ := minX, minY, minZ

	for i, s := range samples {
		p := geo.ToECEF(s.Lon, s.Lat, s.Local.Z)
		ecef[i] = p
		if i == 0 {
			minX, maxX = p[0], p[0]
			minY, maxY = p[1], p[1]
			minZ, maxZ = p[2], p[2]
			continue
		}
		minX, maxX = minF(minX, p[0]), maxF(maxX, p[0])
		minY, maxY = minF(minY, p[1]), maxF(maxY, p[1])
		minZ, maxZ = minF(minZ, p[2]), maxF(maxZ, p[2])
	}

	// center is the midpoint of the axis-aligned ECEF bounding box, not
	// a lat/lon midpoint, per spec.md §4.3 (avoids edge cases near the
	// poles where a naive lon/lat average is meaningless).
	center = [3]float64{(minX + maxX) / 2, (minY + maxY) / 2, (minZ + maxZ) / 2}

	sphereCenter, sphereRadius = geo.BoundingSphere(ecef)
	hop = geo.HorizonOcclusionPoint(ecef, center)
	return
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
