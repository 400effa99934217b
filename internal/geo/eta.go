package geo

import "math"

// MinutesPerKm is the fixed travel-time heuristic (about 20 km/h average).
const MinutesPerKm = 3.0

// EstimateMinutes converts a distance into minutes, rounded to two decimals.
func EstimateMinutes(distanceKm float64) float64 {
	return Round2(distanceKm * MinutesPerKm)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
