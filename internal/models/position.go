package models

import (
	"encoding/json"
	"time"
)

// Position is a single device fix as reported by the tracking service.
// Only the fields that are archived are decoded; everything else stays in Attributes.
type Position struct {
	ID         int64           `json:"id"`
	DeviceID   int64           `json:"deviceId"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Speed      float64         `json:"speed"`
	FixTime    time.Time       `json:"fixTime"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}
