package models

// Place is a geocoded address.
type Place struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// ETAResult is the outcome of an ETA prediction. Pickup and Dropoff are set only for address lookups.
type ETAResult struct {
	DistanceKm float64 `json:"distance_km"`
	ETAMinutes float64 `json:"eta_minutes"`
	Pickup     *Place  `json:"pickup,omitempty"`
	Dropoff    *Place  `json:"dropoff,omitempty"`
}
