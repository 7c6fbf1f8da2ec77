package journeyplan

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/temporal"
	"github.com/trenovivo/trenovivo/pkg/util"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

// Planner normalizes journey search results into ordered candidate journeys.
// It never re-ranks: the upstream ordering is assumed intentional. The
// aggregate duration it reports is known wrong for multi-leg and
// day-spanning trips, so it is surfaced as notional only; per-leg spans come
// from the legs' own timestamps.
type Planner struct {
	client *viaggiatreno.Client
}

func NewPlanner(client *viaggiatreno.Client) *Planner {
	return &Planner{client: client}
}

func (p *Planner) Search(ctx context.Context, originID ctdf.StationCode, destinationID ctdf.StationCode, at time.Time) ([]ctdf.JourneyCandidate, error) {
	originENEE, ok := originID.ENEE()
	if !ok {
		return nil, fmt.Errorf("origin %s has no journey-search code: %w", originID, viaggiatreno.ErrNotFound)
	}

	destENEE, ok := destinationID.ENEE()
	if !ok {
		return nil, fmt.Errorf("destination %s has no journey-search code: %w", destinationID, viaggiatreno.ErrNotFound)
	}

	raw, err := p.client.JourneySolutions(ctx, originENEE, destENEE, temporal.FormatSearchTimestamp(at))
	if err != nil {
		return nil, err
	}

	candidates := make([]ctdf.JourneyCandidate, 0, len(raw.Solutions))
	for i := range raw.Solutions {
		candidates = append(candidates, normalizeSolution(&raw.Solutions[i]))
	}

	return candidates, nil
}

func normalizeSolution(raw *viaggiatreno.RawSolution) ctdf.JourneyCandidate {
	candidate := ctdf.JourneyCandidate{
		NotionalDuration: ctdf.DurationSignal{Confidence: ctdf.ConfidenceAbsent},
	}

	minutes, lowConfidence, err := temporal.ParseDuration(raw.Duration)
	if err == nil {
		candidate.NotionalDuration = ctdf.DurationSignal{
			Minutes:    minutes,
			Confidence: ctdf.ConfidenceNotional,
		}
		candidate.DurationSuspect = lowConfidence
	} else {
		log.Debug().Err(err).Str("durata", raw.Duration).Msg("Journey duration unparseable, left absent")
	}

	for _, vehicle := range raw.Vehicles {
		leg := ctdf.JourneyLeg{
			Number:        vehicle.Number.String(),
			Category:      util.NormalizeDisplayName(vehicle.Category),
			BoardingName:  util.NormalizeDisplayName(vehicle.Origin),
			AlightingName: util.NormalizeDisplayName(vehicle.Destination),
		}

		// These two are ISO timestamps, unlike the rest of the API
		if departure, err := temporal.ParseSearchTimestamp(vehicle.DepartureTime); err == nil {
			leg.Departure = departure
		}
		if arrival, err := temporal.ParseSearchTimestamp(vehicle.ArrivalTime); err == nil {
			leg.Arrival = arrival
		}

		candidate.Legs = append(candidate.Legs, leg)
	}

	return candidate
}
