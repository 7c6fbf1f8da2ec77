package ctdf

import "time"

// JourneyLeg is one train of a journey candidate. It deliberately carries no
// delay or track fields: the journey search endpoint has never been confirmed
// to report them, so callers wanting live data must go through the progress
// reconciler for each leg.
type JourneyLeg struct {
	Number   string `groups:"basic"`
	Category string `groups:"basic"`

	BoardingName  string `groups:"basic"`
	AlightingName string `groups:"basic"`

	Departure time.Time `groups:"basic"`
	Arrival   time.Time `groups:"basic"`
}

// SpanMinutes is the leg span derived from its own timestamps. This, not the
// candidate's notional duration, is the value to use for per-leg reasoning.
func (l *JourneyLeg) SpanMinutes() int {
	return int(l.Arrival.Sub(l.Departure).Minutes())
}

type JourneyCandidate struct {
	Legs []JourneyLeg `groups:"basic"`

	// NotionalDuration is the upstream's aggregate figure, known incorrect
	// for multi-leg and day-spanning trips. Always Notional confidence.
	NotionalDuration DurationSignal `groups:"basic"`

	// DurationSuspect marks spans nominally at or beyond 24 hours, where the
	// upstream H:M format cannot be trusted at all
	DurationSuspect bool `groups:"basic"`
}
