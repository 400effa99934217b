package models

import "fmt"

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Longitude float64 `json:"lon"` // Longitude of the geographical point.
	Latitude  float64 `json:"lat"` // Latitude of the geographical point.
}

// Validate reports an ErrValidation when the point lies outside the WGS84 ranges.
func (c Coordinates) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrValidation, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrValidation, c.Longitude)
	}

	return nil
}
