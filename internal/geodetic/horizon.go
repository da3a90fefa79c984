package geodetic

import "math"

var scaledSpaceRadii = [3]float64{SemiMajorAxis, SemiMajorAxis, semiMinorAxis}

// toScaledSpace divides p componentwise by the ellipsoid's radii, mapping
// the WGS84 ellipsoid onto the unit sphere.
func toScaledSpace(p ECEF) ECEF {
	return ECEF{p.X / scaledSpaceRadii[0], p.Y / scaledSpaceRadii[1], p.Z / scaledSpaceRadii[2]}
}

// fromScaledSpace is the inverse of toScaledSpace.
func fromScaledSpace(p ECEF) ECEF {
	return ECEF{p.X * scaledSpaceRadii[0], p.Y * scaledSpaceRadii[1], p.Z * scaledSpaceRadii[2]}
}

func cross(a, b ECEF) ECEF {
	return ECEF{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// HorizonOcclusionPoint computes Cesium's horizon occlusion point for a set
// of ECEF samples, given the direction from the ellipsoid center through
// which occlusion is evaluated (typically the tile's bounding-box center).
// If the client's camera-to-hop vector indicates hop is below the local
// horizon, every sample in points is guaranteed to be below it too.
//
// directionToPoint must be non-zero.
func HorizonOcclusionPoint(points []ECEF, directionToPoint ECEF) ECEF {
	if directionToPoint.Length() == 0 || len(points) == 0 {
		return ECEF{}
	}

	scaledDirection := toScaledSpace(directionToPoint)
	if l := scaledDirection.Length(); l > 0 {
		scaledDirection = scaledDirection.Scale(1 / l)
	}

	resultMagnitude := 0.0
	for _, p := range points {
		m := horizonMagnitude(p, scaledDirection)
		if m > resultMagnitude {
			resultMagnitude = m
		}
	}

	result := scaledDirection.Scale(resultMagnitude)
	return fromScaledSpace(result)
}

// horizonMagnitude computes the scalar multiple of scaledSpaceDirection
// along which a candidate horizon occlusion point would need to lie to
// bound the single sample p, per Cesium's EllipsoidalOccluder construction.
func horizonMagnitude(p ECEF, scaledSpaceDirection ECEF) float64 {
	scaledPosition := toScaledSpace(p)
	magnitudeSquared := scaledPosition.Dot(scaledPosition)
	magnitude := math.Sqrt(magnitudeSquared)

	direction := scaledPosition
	if magnitude > 0 {
		direction = scaledPosition.Scale(1 / magnitude)
	}

	magnitudeSquared = math.Max(1.0, magnitudeSquared)
	magnitude = math.Max(1.0, magnitude)

	cosAlpha := direction.Dot(scaledSpaceDirection)
	sinAlpha := cross(direction, scaledSpaceDirection).Length()
	cosBeta := 1.0 / magnitude
	sinBeta := math.Sqrt(magnitudeSquared-1.0) * cosBeta

	denom := cosAlpha*cosBeta - sinAlpha*sinBeta
	if denom == 0 {
		return 0
	}
	return 1.0 / denom
}
