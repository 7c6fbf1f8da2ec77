package progress

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/temporal"
	"github.com/trenovivo/trenovivo/pkg/util"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

// Reconciler merges a train's overall-trip record with its per-stop itinerary
// records into one coherent TrainRun. It resolves the authoritative delay at
// each granularity, follows renumberings, and reconciles the board view with
// the detailed-progress view. Degraded output with explicit confidence flags
// is always preferred to failing.
type Reconciler struct {
	client *viaggiatreno.Client
}

func NewReconciler(client *viaggiatreno.Client) *Reconciler {
	return &Reconciler{client: client}
}

// TrainProgress fetches and normalizes the detailed progress record for one
// run. The number may be any of the run's numbers; the returned run is keyed
// by the true origin and original departure date either way.
func (r *Reconciler) TrainProgress(ctx context.Context, key ctdf.RunKey, trainNumber string) (*ctdf.TrainRun, error) {
	raw, err := r.client.TrainProgress(ctx, key.OriginStationID.String(), trainNumber, temporal.MidnightEpochMillis(key.DepartureDate))
	if err != nil {
		return nil, err
	}

	return normalizeProgress(raw, key, trainNumber), nil
}

func normalizeProgress(raw *viaggiatreno.RawProgress, requestedKey ctdf.RunKey, requestedNumber string) *ctdf.TrainRun {
	run := &ctdf.TrainRun{
		Number:   raw.Number.String(),
		Category: strings.TrimSpace(raw.Category),

		OriginName:      util.NormalizeDisplayName(raw.Origin),
		DestinationName: util.NormalizeDisplayName(raw.Destination),
		Headsign:        util.NormalizeDisplayName(raw.Destination),

		ScheduledDeparture: temporal.InstantFromMillis(raw.DepartureTime),
		ScheduledArrival:   temporal.InstantFromMillis(raw.ArrivalTime),

		// The whole-trip figure is surfaced next to the per-stop ones, tagged
		// so callers cannot mistake it for a measured value
		TripDelay: ctdf.DelaySignal{
			Minutes:    raw.Delay,
			Confidence: ctdf.ConfidenceNotional,
		},

		Warning:     strings.TrimSpace(raw.Warning),
		DelayReason: strings.TrimSpace(raw.DelayReason),
	}

	if run.Number == "" {
		run.Number = requestedNumber
	}
	if raw.DestinationID != "" {
		run.DestinationID = ctdf.ParseStationCode(raw.DestinationID)
	}

	// The upstream record carries the authoritative composite key; the
	// requested one is only a fallback when the record's own fields are
	// broken
	run.RunKey = requestedKey
	if raw.OriginID != "" {
		run.RunKey.OriginStationID = ctdf.ParseStationCode(raw.OriginID)
	}
	if departureDate, err := temporal.ParseEpochMillis(raw.DepartureDate); err == nil {
		run.RunKey.DepartureDate = temporal.DateOnly(departureDate)
	}

	// haCambiNumero is unreliable in both directions, so the change sequence
	// is read unconditionally. An empty sequence proves nothing.
	for _, change := range raw.NumberChanges {
		run.NumberChanges = append(run.NumberChanges, ctdf.NumberChange{
			NewNumber:   change.NewNumber.String(),
			StationName: util.NormalizeDisplayName(change.Station),
		})
	}

	for i := range raw.Stops {
		stop, complete := normalizeStop(&raw.Stops[i])
		if !complete {
			run.Incomplete = true
		}

		run.Stops = append(run.Stops, stop)
	}

	if len(raw.Stops) == 0 {
		run.Incomplete = true
	} else if !itineraryWellFormed(run.Stops) {
		run.Incomplete = true
	}

	// "--" is the upstream's no-detection sentinel
	if raw.LastDetectionStation != "" && raw.LastDetectionStation != "--" {
		run.LastDetectionStation = util.NormalizeDisplayName(raw.LastDetectionStation)
	}
	run.LastDetectionTime = temporal.InstantFromMillis(raw.LastDetectionTime)

	run.State, run.StateSource = deriveState(run, recordSuppliesDetail(raw))

	if run.Incomplete {
		log.Debug().
			Str("train", run.Number).
			Str("key", run.RunKey.String()).
			Msg("Detailed progress record is missing expected fields")
	}

	return run
}

// normalizeStop reshapes one itinerary record. A stop missing its identifier
// or both scheduled times is reported as incomplete; single-field parse
// failures degrade to absent rather than poisoning the record.
func normalizeStop(raw *viaggiatreno.RawProgressStop) (ctdf.Stop, bool) {
	stop := ctdf.Stop{
		StationID:   ctdf.ParseStationCode(raw.ID),
		StationName: util.NormalizeDisplayName(raw.Station),
		Kind:        ctdf.ParseStopKind(raw.StopType),

		ScheduledArrival:   temporal.InstantFromMillis(raw.ScheduledArrival),
		ActualArrival:      temporal.InstantFromMillis(raw.ActualArrival),
		ScheduledDeparture: temporal.InstantFromMillis(raw.ScheduledDeparture),
		ActualDeparture:    temporal.InstantFromMillis(raw.ActualDeparture),

		ScheduledArrivalTrack:   strings.TrimSpace(raw.ScheduledArrivalTrack),
		ActualArrivalTrack:      strings.TrimSpace(raw.ActualArrivalTrack),
		ScheduledDepartureTrack: strings.TrimSpace(raw.ScheduledDepartureTrack),
		ActualDepartureTrack:    strings.TrimSpace(raw.ActualDepartureTrack),

		DelayAtArrival:   raw.DelayAtArrival,
		DelayAtDeparture: raw.DelayAtDeparture,
	}

	complete := raw.ID != "" && (stop.ScheduledArrival != nil || stop.ScheduledDeparture != nil)

	return stop, complete
}

// itineraryWellFormed checks the stop-sequence shape: exactly one origin
// stop, and scheduled times that never move backwards along the sequence.
// Records violating either are degraded, not rejected.
func itineraryWellFormed(stops []ctdf.Stop) bool {
	originCount := 0
	var previous *time.Time

	for i := range stops {
		if stops[i].Kind == ctdf.StopKindOrigin {
			originCount++
		}

		scheduled := stops[i].ScheduledArrival
		if scheduled == nil {
			scheduled = stops[i].ScheduledDeparture
		}
		if scheduled == nil {
			continue
		}

		if previous != nil && scheduled.Before(*previous) {
			return false
		}
		previous = scheduled
	}

	return originCount == 1
}

func recordSuppliesDetail(raw *viaggiatreno.RawProgress) bool {
	if len(raw.Stops) > 0 || raw.LastDetectionTime != nil {
		return true
	}

	return raw.LastDetectionStation != "" && raw.LastDetectionStation != "--"
}
