// Package geodetic implements the WGS84 ellipsoidal forward transform and
// the small set of ECEF geometry routines (minimum bounding sphere,
// horizon occlusion point) that a tile's header requires. These are
// narrow, closed-form numerical routines; see DESIGN.md for why they are
// implemented directly against stdlib math rather than through a
// third-party geodesy library.
package geodetic

import "math"

// WGS84 defining constants.
const (
	SemiMajorAxis = 6378137.0          // a, meters
	Flattening    = 1.0 / 298.257223563 // f
)

var (
	semiMinorAxis    = SemiMajorAxis * (1 - Flattening)
	eccentricitySq   = 2*Flattening - Flattening*Flattening
	radiiSquared     = [3]float64{SemiMajorAxis * SemiMajorAxis, SemiMajorAxis * SemiMajorAxis, semiMinorAxis * semiMinorAxis}
)

// ECEF is an Earth-Centered, Earth-Fixed Cartesian coordinate, in meters.
type ECEF struct {
	X, Y, Z float64
}

// Sub returns a-b componentwise.
func (a ECEF) Sub(b ECEF) ECEF { return ECEF{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Add returns a+b componentwise.
func (a ECEF) Add(b ECEF) ECEF { return ECEF{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Scale returns a scaled by s.
func (a ECEF) Scale(s float64) ECEF { return ECEF{a.X * s, a.Y * s, a.Z * s} }

// Dot returns the dot product of a and b.
func (a ECEF) Dot(b ECEF) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Length returns the Euclidean norm of a.
func (a ECEF) Length() float64 { return math.Sqrt(a.Dot(a)) }

// ToGeographic converts geographic degrees and a height in meters above the
// WGS84 ellipsoid to ECEF. lon and lat are in degrees; h is in meters.
func ToGeographic(lon, lat, h float64) ECEF {
	lonRad := lon * math.Pi / 180
	latRad := lat * math.Pi / 180

	sinLat := math.Sin(latRad)
	cosLat := math.Cos(latRad)
	sinLon := math.Sin(lonRad)
	cosLon := math.Cos(lonRad)

	// Radius of curvature in the prime vertical.
	n := SemiMajorAxis / math.Sqrt(1-eccentricitySq*sinLat*sinLat)

	return ECEF{
		X: (n + h) * cosLat * cosLon,
		Y: (n + h) * cosLat * sinLon,
		Z: (n*(1-eccentricitySq) + h) * sinLat,
	}
}

// surfaceNormal returns the outward unit normal of the WGS84 ellipsoid at
// the ECEF point p, i.e. p scaled componentwise by 1/radiiSquared and
// renormalized. This is the "geodetic surface normal" used by the
// horizon-occlusion-point construction.
func surfaceNormal(p ECEF) ECEF {
	n := ECEF{p.X / radiiSquared[0], p.Y / radiiSquared[1], p.Z / radiiSquared[2]}
	l := n.Length()
	if l == 0 {
		return ECEF{}
	}
	return n.Scale(1 / l)
}
