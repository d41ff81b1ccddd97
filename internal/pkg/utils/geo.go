package utils

import "math"

// CoordinatePrecision is the number of decimal places reverse lookup
// coordinates are rounded to before they are used as cache keys. Four
// decimal places is roughly 11 meters, more than enough for address lookups.
const CoordinatePrecision = 4

// ValidateCoordinates checks that a lat/lon pair is on the globe.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// RoundCoordinate rounds a coordinate to CoordinatePrecision decimal places.
func RoundCoordinate(v float64) float64 {
	shift := math.Pow(10, CoordinatePrecision)
	return math.Round(v*shift) / shift
}

// PointInPolygon reports whether the point lies inside the polygon using the
// even-odd ray casting rule. The polygon is a ring of [lat, lon] vertices;
// closing the ring is optional.
func PointInPolygon(lat, lon float64, ring [][2]float64) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		yi, xi := ring[i][0], ring[i][1]
		yj, xj := ring[j][0], ring[j][1]

		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
