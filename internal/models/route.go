package models

import "time"

// RouteEntry is a submitted origin/destination pair. Entries are immutable once created.
type RouteEntry struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	SubmittedAt time.Time `json:"time"`
}
