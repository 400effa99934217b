// Package geo holds the straight-line distance and ETA heuristics.
package geo

import (
	"fmt"
	"math"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used by both distance functions.
const EarthRadiusKm = 6371.0

// Method selects the great-circle implementation.
type Method string

const (
	MethodHaversine Method = "haversine"
	MethodGeodesic  Method = "geodesic"
)

// DistanceFunc returns the distance in kilometres between two points.
type DistanceFunc func(from, to models.Coordinates) float64

// Func returns the distance function of the method.
func (m Method) Func() (DistanceFunc, error) {
	switch m {
	case MethodHaversine, "":
		return Haversine, nil
	case MethodGeodesic:
		return GeodesicDistance, nil
	default:
		return nil, fmt.Errorf("unsupported distance method: %s", m)
	}
}

// Haversine returns the great-circle distance in kilometres between two points.
func Haversine(from, to models.Coordinates) float64 {
	phi1 := toRadians(from.Latitude)
	phi2 := toRadians(to.Latitude)
	dPhi := toRadians(to.Latitude - from.Latitude)
	dLambda := toRadians(to.Longitude - from.Longitude)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// Rounding can push a just past 1 for near-antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// GeodesicDistance computes the same spherical distance as Haversine using the s2 geometry library.
func GeodesicDistance(from, to models.Coordinates) float64 {
	a := s2.LatLngFromDegrees(from.Latitude, from.Longitude)
	b := s2.LatLngFromDegrees(to.Latitude, to.Longitude)

	return a.Distance(b).Radians() * EarthRadiusKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
