package ctdf

import "time"

type BoardEntryType string

const (
	BoardEntryTypeDeparture BoardEntryType = "Departure"
	BoardEntryTypeArrival   BoardEntryType = "Arrival"
)

// BoardEntry is one row of a departures or arrivals board, reshaped into a
// single canonical form regardless of which of the two endpoints produced it.
type BoardEntry struct {
	Number string         `groups:"basic"`
	RunKey RunKey         `groups:"basic"`
	Type   BoardEntryType `groups:"basic"`

	Category string `groups:"basic"`

	// Headsign is the destination display text on a departures board and the
	// origin display text on an arrivals board
	Headsign string `groups:"basic"`

	ScheduledTime *time.Time `groups:"basic"`

	ScheduledTrack string `groups:"basic"`
	ActualTrack    string `groups:"basic"`

	// BoardDelay is the board's own delay figure. Boards are a lower
	// confidence source than detailed progress; callers needing a trustworthy
	// delay must prefer the reconciler's value when one exists.
	BoardDelay DelaySignal `groups:"basic"`

	DepartedFromOrigin bool `groups:"basic"`
	IsAtStation        bool `groups:"basic"`

	Warning string `groups:"detailed"`
}
