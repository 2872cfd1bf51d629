package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// EarthRadiusKM is the mean Earth radius used by the haversine formula.
const EarthRadiusKM = 6371.0

var ErrInvalidCoordinate = errors.New("coordinate out of range")

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Place is a named point, typically a location node from the graph.
type Place struct {
	Name  string
	Point Point
}

// Match is a place together with its great-circle distance from the origin.
type Match struct {
	Place      Place
	DistanceKM float64
}

func ValidateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return fmt.Errorf("%w: coordinates must be finite numbers", ErrInvalidCoordinate)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %.6f not in [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %.6f not in [-180, 180]", ErrInvalidCoordinate, lon)
	}
	return nil
}

// Haversine returns the great-circle distance between two points in kilometers.
func Haversine(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKM * c
}

// WithinRadius ranks places by distance from origin, nearest first, and drops
// everything beyond radiusKM. Equal distances are ordered by place name so
// results stay stable across runs.
func WithinRadius(origin Point, radiusKM float64, places []Place) ([]Match, error) {
	if err := ValidateCoordinate(origin.Latitude, origin.Longitude); err != nil {
		return nil, err
	}
	if radiusKM <= 0 {
		return nil, fmt.Errorf("%w: radius %.2f must be positive", ErrInvalidCoordinate, radiusKM)
	}

	out := make([]Match, 0, len(places))
	for _, p := range places {
		if err := ValidateCoordinate(p.Point.Latitude, p.Point.Longitude); err != nil {
			continue
		}
		d := Haversine(origin, p.Point)
		if d > radiusKM {
			continue
		}
		out = append(out, Match{Place: p, DistanceKM: d})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKM != out[j].DistanceKM {
			return out[i].DistanceKM < out[j].DistanceKM
		}
		return out[i].Place.Name < out[j].Place.Name
	})

	return out, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
