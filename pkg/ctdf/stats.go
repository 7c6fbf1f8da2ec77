package ctdf

import "time"

// NetworkStats is the nationwide circulation snapshot from the statistics
// endpoint.
type NetworkStats struct {
	TrainsSinceMidnight int       `groups:"basic"`
	TrainsRunning       int       `groups:"basic"`
	LastUpdate          time.Time `groups:"basic"`
}
