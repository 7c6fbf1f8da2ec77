package ctdf

import (
	"fmt"
	"time"
)

// RunKey is the composite key that survives a mid-route renumbering. The
// train number does not: a single physical run can change number at an
// intermediate station, but its true origin and original departure date
// never change.
type RunKey struct {
	OriginStationID StationCode `groups:"basic"`
	DepartureDate   time.Time   `groups:"basic"`
}

func (k RunKey) String() string {
	return fmt.Sprintf("%s:%s", k.OriginStationID, k.DepartureDate.Format("2006-01-02"))
}

type StopKind string

const (
	StopKindOrigin       StopKind = "Origin"
	StopKindIntermediate StopKind = "Intermediate"
	StopKindDestination  StopKind = "Destination"
)

// ParseStopKind maps the upstream single letter P/F/A markers. Anything else
// degrades to Intermediate rather than failing the whole record.
func ParseStopKind(raw string) StopKind {
	switch raw {
	case "P":
		return StopKindOrigin
	case "A":
		return StopKindDestination
	default:
		return StopKindIntermediate
	}
}

type Stop struct {
	StationID   StationCode `groups:"basic"`
	StationName string      `groups:"basic"`
	Kind        StopKind    `groups:"basic"`

	ScheduledArrival   *time.Time `groups:"basic"`
	ActualArrival      *time.Time `groups:"basic"`
	ScheduledDeparture *time.Time `groups:"basic"`
	ActualDeparture    *time.Time `groups:"basic"`

	ScheduledArrivalTrack   string `groups:"detailed"`
	ActualArrivalTrack      string `groups:"detailed"`
	ScheduledDepartureTrack string `groups:"detailed"`
	ActualDepartureTrack    string `groups:"detailed"`

	DelayAtArrival   int `groups:"detailed"`
	DelayAtDeparture int `groups:"detailed"`
}

// DelayMinutes is the resolved per-stop delay: the departure delay at the
// origin stop, the arrival delay everywhere else.
func (s *Stop) DelayMinutes() int {
	if s.Kind == StopKindOrigin {
		return s.DelayAtDeparture
	}

	return s.DelayAtArrival
}

// ScheduledTrack follows the same origin/elsewhere split as DelayMinutes.
func (s *Stop) ScheduledTrack() string {
	if s.Kind == StopKindOrigin {
		return s.ScheduledDepartureTrack
	}

	return s.ScheduledArrivalTrack
}

func (s *Stop) ActualTrack() string {
	if s.Kind == StopKindOrigin {
		return s.ActualDepartureTrack
	}

	return s.ActualArrivalTrack
}

func (s *Stop) DepartureTrackChanged() bool {
	return s.ActualDepartureTrack != "" && s.ActualDepartureTrack != s.ScheduledDepartureTrack
}

func (s *Stop) ArrivalTrackChanged() bool {
	return s.ActualArrivalTrack != "" && s.ActualArrivalTrack != s.ScheduledArrivalTrack
}

type NumberChange struct {
	NewNumber   string `groups:"basic"`
	StationName string `groups:"basic"`
}

type ProgressState string

const (
	// ProgressStateScheduled means the run exists but has no detection yet
	ProgressStateScheduled ProgressState = "Scheduled"
	ProgressStateEnRoute   ProgressState = "EnRoute"
	ProgressStateArrived   ProgressState = "Arrived"
	// ProgressStateUnknown means detailed data was absent or unparseable.
	// It is deliberately distinct from Scheduled.
	ProgressStateUnknown ProgressState = "Unknown"
)

// StateSource records which signal produced the progress state, so a board
// derived fallback is never mistaken for a detailed progress detection.
type StateSource string

const (
	StateSourceDetailedProgress StateSource = "DetailedProgress"
	StateSourceBoard            StateSource = "Board"
	StateSourceNone             StateSource = "None"
)

type TrainRun struct {
	Number string `groups:"basic"`
	RunKey RunKey `groups:"basic"`

	Category string `groups:"basic"`
	Headsign string `groups:"basic"`

	OriginName      string      `groups:"basic"`
	DestinationName string      `groups:"basic"`
	DestinationID   StationCode `groups:"detailed"`

	ScheduledDeparture *time.Time `groups:"basic"`
	ScheduledArrival   *time.Time `groups:"basic"`

	// NumberChanges is the single source of truth for renumberings. An empty
	// sequence is not proof no change occurred, only that none is reported;
	// the upstream "has number changes" boolean is unreliable and is never
	// consulted.
	NumberChanges []NumberChange `groups:"basic"`

	Stops []Stop `groups:"basic"`

	// TripDelay is the whole-trip delay field the upstream reports separately
	// from the per-stop figures. It is exposed alongside them, never
	// substituted for them.
	TripDelay DelaySignal `groups:"basic"`

	State       ProgressState `groups:"basic"`
	StateSource StateSource   `groups:"basic"`

	LastDetectionStation string     `groups:"basic"`
	LastDetectionTime    *time.Time `groups:"basic"`

	// Incomplete marks a record where stops were present but some expected
	// fields were null. The record is still usable, degraded.
	Incomplete bool `groups:"basic"`

	Warning     string `groups:"detailed"`
	DelayReason string `groups:"detailed"`
}

// Numbers returns every number this physical run is known under, original
// first, in renumbering order.
func (r *TrainRun) Numbers() []string {
	numbers := []string{r.Number}
	for _, change := range r.NumberChanges {
		numbers = append(numbers, change.NewNumber)
	}

	return numbers
}

func (r *TrainRun) KnownAs(number string) bool {
	for _, n := range r.Numbers() {
		if n == number {
			return true
		}
	}

	return false
}

func (r *TrainRun) Origin() *Stop {
	for i := range r.Stops {
		if r.Stops[i].Kind == StopKindOrigin {
			return &r.Stops[i]
		}
	}

	return nil
}

// HasDeparted reports whether the run has actually left its true origin,
// regardless of which station's board it is being observed from. A train
// missing from a downstream board either hasn't left its origin yet or is
// late en route; this distinguishes the two.
func (r *TrainRun) HasDeparted() bool {
	origin := r.Origin()

	return origin != nil && origin.ActualDeparture != nil
}

func (r *TrainRun) StopAt(stationID StationCode) *Stop {
	for i := range r.Stops {
		if r.Stops[i].StationID.SameStation(stationID) {
			return &r.Stops[i]
		}
	}

	return nil
}

// RunRef points at a run by the composite key plus one of its numbers, as
// returned by the train number lookup endpoint.
type RunRef struct {
	Number     string `groups:"basic"`
	OriginName string `groups:"basic"`
	RunKey     RunKey `groups:"basic"`
}
