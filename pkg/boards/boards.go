package boards

import (
	"context"
	"strings"
	"time"

	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/temporal"
	"github.com/trenovivo/trenovivo/pkg/util"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

// Adapter reshapes the raw departures/arrivals records into canonical
// BoardEntry values, hiding which of the two endpoint variants a row came
// from. It is a pure read-through: no state, no side effects.
type Adapter struct {
	client *viaggiatreno.Client
}

func NewAdapter(client *viaggiatreno.Client) *Adapter {
	return &Adapter{client: client}
}

func (a *Adapter) Departures(ctx context.Context, stationID string, at time.Time) ([]ctdf.BoardEntry, error) {
	raw, err := a.client.Departures(ctx, stationID, temporal.FormatBoardTimestamp(at))
	if err != nil {
		return nil, err
	}

	entries := make([]ctdf.BoardEntry, 0, len(raw))
	for i := range raw {
		entries = append(entries, normalizeRecord(&raw[i], ctdf.BoardEntryTypeDeparture))
	}

	return entries, nil
}

func (a *Adapter) Arrivals(ctx context.Context, stationID string, at time.Time) ([]ctdf.BoardEntry, error) {
	raw, err := a.client.Arrivals(ctx, stationID, temporal.FormatBoardTimestamp(at))
	if err != nil {
		return nil, err
	}

	entries := make([]ctdf.BoardEntry, 0, len(raw))
	for i := range raw {
		entries = append(entries, normalizeRecord(&raw[i], ctdf.BoardEntryTypeArrival))
	}

	return entries, nil
}

func normalizeRecord(raw *viaggiatreno.RawBoardRecord, entryType ctdf.BoardEntryType) ctdf.BoardEntry {
	entry := ctdf.BoardEntry{
		Number:   raw.Number.String(),
		Type:     entryType,
		Category: strings.TrimSpace(raw.Category),

		// Board delay figures are known to disagree with detailed progress;
		// tag them so callers can tell the two apart
		BoardDelay: ctdf.DelaySignal{
			Minutes:    raw.Delay,
			Confidence: ctdf.ConfidenceReported,
		},

		DepartedFromOrigin: !raw.NotDeparted,
		IsAtStation:        raw.InStation,
		Warning:            strings.TrimSpace(raw.Warning),
	}

	// Boards report the run's true origin under codOrigine, some variants
	// under idOrigine
	originCode := raw.OriginCode
	if originCode == "" {
		originCode = raw.OriginID
	}
	entry.RunKey.OriginStationID = ctdf.ParseStationCode(originCode)

	if departureDate, err := temporal.ParseEpochMillis(raw.DepartureDate); err == nil {
		entry.RunKey.DepartureDate = temporal.DateOnly(departureDate)
	}

	switch entryType {
	case ctdf.BoardEntryTypeDeparture:
		entry.Headsign = util.NormalizeDisplayName(raw.Destination)
		entry.ScheduledTime = temporal.InstantFromMillis(raw.DepartureTime)
		entry.ScheduledTrack = strings.TrimSpace(raw.ScheduledDepartureTrack)
		entry.ActualTrack = strings.TrimSpace(raw.ActualDepartureTrack)
	case ctdf.BoardEntryTypeArrival:
		entry.Headsign = util.NormalizeDisplayName(raw.Origin)
		entry.ScheduledTime = temporal.InstantFromMillis(raw.ArrivalTime)
		entry.ScheduledTrack = strings.TrimSpace(raw.ScheduledArrivalTrack)
		entry.ActualTrack = strings.TrimSpace(raw.ActualArrivalTrack)
	}

	return entry
}
