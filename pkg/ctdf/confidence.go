package ctdf

// Confidence tags a value with how much the upstream source can be trusted
// for it. The upstream reports the same fact (delay, track, departure state)
// through several endpoints that routinely disagree, so values are surfaced
// side by side with their provenance instead of collapsed into one field.
type Confidence string

const (
	// ConfidenceMeasured comes from a per-stop detailed progress record
	ConfidenceMeasured Confidence = "Measured"
	// ConfidenceReported comes from a departures/arrivals board row
	ConfidenceReported Confidence = "Reported"
	// ConfidenceNotional comes from a whole-trip or aggregate field known to
	// be wrong for some trips
	ConfidenceNotional Confidence = "Notional"
	ConfidenceAbsent   Confidence = "Absent"
)

type DelaySignal struct {
	Minutes    int        `groups:"basic"`
	Confidence Confidence `groups:"basic"`
}

func AbsentDelay() DelaySignal {
	return DelaySignal{Confidence: ConfidenceAbsent}
}

type DurationSignal struct {
	Minutes    int        `groups:"basic"`
	Confidence Confidence `groups:"basic"`
}
