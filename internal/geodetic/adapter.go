package geodetic

// Adapter satisfies mesh.GeodeticAdapter using the ECEF/miniball/horizon
// routines in this package. It takes and returns plain [3]float64
// triples rather than the ECEF type so internal/mesh does not need to
// import internal/geodetic.
type Adapter struct{}

// ToECEF converts geographic degrees and a height in meters to ECEF.
func (Adapter) ToECEF(lon, lat, h float64) [3]float64 {
	p := ToGeographic(lon, lat, h)
	return [3]float64{p.X, p.Y, p.Z}
}

// BoundingSphere computes the minimum enclosing sphere of points.
func (Adapter) BoundingSphere(points [][3]float64) (center [3]float64, radius float64) {
	pts := make([]ECEF, len(points))
	for i, p := range points {
		pts[i] = ECEF{X: p[0], Y: p[1], Z: p[2]}
	}
	s := MinBoundingSphere(pts)
	return [3]float64{s.Center.X, s.Center.Y, s.Center.Z}, s.Radius
}

// HorizonOcclusionPoint computes Cesium's horizon occlusion point.
func (Adapter) HorizonOcclusionPoint(points [][3]float64, direction [3]float64) [3]float64 {
	pts := make([]ECEF, len(points))
	for i, p := range points {
		pts[i] = ECEF{X: p[0], Y: p[1], Z: p[2]}
	}
	hop := HorizonOcclusionPoint(pts, ECEF{X: direction[0], Y: direction[1], Z: direction[2]})
	return [3]float64{hop.X, hop.Y, hop.Z}
}
