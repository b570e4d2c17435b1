// Package geo holds the small amount of spherical math the candidate
// query needs: great-circle distance and a bounding box around a point.
package geo

import (
	"math"
	"strconv"
)

// EarthRadiusMeters is the mean Earth radius used for all distances.
const EarthRadiusMeters = 6371008.8

// Point is a longitude/latitude pair in degrees.
type Point struct {
	Lng float64
	Lat float64
}

// Box is a lat/lng rectangle. When it crosses the antimeridian MinLng > MaxLng.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// CrossesAntimeridian reports whether the box wraps around ±180°.
func (b Box) CrossesAntimeridian() bool { return b.MinLng > b.MaxLng }

// DistanceMeters is the haversine great-circle distance between a and b.
func DistanceMeters(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoundingBox returns a box that contains every point within radiusMeters of
// center. It is a superset of the circle; callers refine with DistanceMeters.
func BoundingBox(center Point, radiusMeters float64) Box {
	angular := radiusMeters / EarthRadiusMeters
	lat := radians(center.Lat)
	lng := radians(center.Lng)

	minLat, maxLat := lat-angular, lat+angular
	var minLng, maxLng float64

	if minLat > -math.Pi/2 && maxLat < math.Pi/2 {
		dLng := math.Asin(math.Sin(angular) / math.Cos(lat))
		minLng, maxLng = lng-dLng, lng+dLng
		if minLng < -math.Pi {
			minLng += 2 * math.Pi
		}
		if maxLng > math.Pi {
			maxLng -= 2 * math.Pi
		}
	} else {
		// a pole is inside the circle: every longitude qualifies
		minLat = math.Max(minLat, -math.Pi/2)
		maxLat = math.Min(maxLat, math.Pi/2)
		minLng, maxLng = -math.Pi, math.Pi
	}

	return Box{
		MinLat: degrees(minLat), MaxLat: degrees(maxLat),
		MinLng: degrees(minLng), MaxLng: degrees(maxLng),
	}
}

// KilometersLabel renders meters as whole kilometers for display ("0", "12").
func KilometersLabel(meters float64) string {
	return strconv.FormatInt(int64(math.Round(meters/1000)), 10)
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }
