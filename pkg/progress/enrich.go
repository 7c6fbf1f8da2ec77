package progress

import (
	"context"
	"errors"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

// One detailed-progress fetch per train, bounded so a full board does not
// stampede the upstream.
const maxConcurrentEnrichments = 10

type TrackSource string

const (
	TrackSourceProgressActual    TrackSource = "ProgressActual"
	TrackSourceProgressScheduled TrackSource = "ProgressScheduled"
	TrackSourceBoard             TrackSource = "Board"
	TrackSourceNone              TrackSource = "None"
)

// EnrichedEntry pairs a board row with its reconciled detailed view. The
// board's own delay stays visible on Board.BoardDelay next to the resolved
// Delay, so the two signals remain distinguishable when they differ.
type EnrichedEntry struct {
	Board ctdf.BoardEntry `groups:"basic"`
	Run   *ctdf.TrainRun  `groups:"basic"`

	Delay ctdf.DelaySignal `groups:"basic"`

	Track       string      `groups:"basic"`
	TrackSource TrackSource `groups:"basic"`
}

// EnrichBoard corrects every board entry with its detailed-progress record,
// concurrently and independently. A train the progress endpoint cannot find
// degrades to a board-derived fallback run rather than dropping the row.
func (r *Reconciler) EnrichBoard(ctx context.Context, entries []ctdf.BoardEntry, stationID ctdf.StationCode) []EnrichedEntry {
	p := pool.NewWithResults[EnrichedEntry]().WithMaxGoroutines(maxConcurrentEnrichments)

	for _, entry := range entries {
		p.Go(func() EnrichedEntry {
			return r.enrichEntry(ctx, entry, stationID)
		})
	}

	return p.Wait()
}

func (r *Reconciler) enrichEntry(ctx context.Context, entry ctdf.BoardEntry, stationID ctdf.StationCode) EnrichedEntry {
	run, err := r.TrainProgress(ctx, entry.RunKey, entry.Number)
	if err != nil {
		if !errors.Is(err, viaggiatreno.ErrTrainNotFound) {
			log.Debug().Err(err).Str("train", entry.Number).Msg("Board enrichment fell back to board data")
		}
		run = FallbackRun(&entry)
	}

	ApplyBoardFallback(run, &entry)

	track, trackSource := ResolveTrack(run, stationID, &entry)

	return EnrichedEntry{
		Board:       entry,
		Run:         run,
		Delay:       ResolveDelay(run, stationID, &entry),
		Track:       track,
		TrackSource: trackSource,
	}
}

// FallbackRun builds a degraded TrainRun from nothing but a board row, for
// trains the detailed endpoint has no record of. The shared header fields
// copy across; everything per-stop stays absent.
func FallbackRun(entry *ctdf.BoardEntry) *ctdf.TrainRun {
	run := &ctdf.TrainRun{}
	copier.Copy(run, entry)

	run.TripDelay = entry.BoardDelay
	run.State = ctdf.ProgressStateUnknown
	run.StateSource = ctdf.StateSourceNone
	run.Incomplete = true

	return run
}

// ResolveDelay picks the single delay value when a caller must have exactly
// one, in the documented preference order: per-stop figure, then board
// figure, then whole-trip figure.
func ResolveDelay(run *ctdf.TrainRun, stationID ctdf.StationCode, board *ctdf.BoardEntry) ctdf.DelaySignal {
	if run != nil && run.StateSource == ctdf.StateSourceDetailedProgress {
		if stop := run.StopAt(stationID); stop != nil {
			return ctdf.DelaySignal{
				Minutes:    stop.DelayMinutes(),
				Confidence: ctdf.ConfidenceMeasured,
			}
		}
	}

	if board != nil && board.BoardDelay.Confidence != ctdf.ConfidenceAbsent {
		return board.BoardDelay
	}

	if run != nil {
		return run.TripDelay
	}

	return ctdf.AbsentDelay()
}

// ResolveTrack applies the track precedence: the detailed stop's actual
// track, then its scheduled track, and only when no detailed record exists at
// all the board's fields.
func ResolveTrack(run *ctdf.TrainRun, stationID ctdf.StationCode, board *ctdf.BoardEntry) (string, TrackSource) {
	if run != nil && run.StateSource == ctdf.StateSourceDetailedProgress {
		if stop := run.StopAt(stationID); stop != nil {
			if stop.ActualTrack() != "" {
				return stop.ActualTrack(), TrackSourceProgressActual
			}
			if stop.ScheduledTrack() != "" {
				return stop.ScheduledTrack(), TrackSourceProgressScheduled
			}
		}
	}

	if board != nil {
		if board.ActualTrack != "" {
			return board.ActualTrack, TrackSourceBoard
		}
		if board.ScheduledTrack != "" {
			return board.ScheduledTrack, TrackSourceBoard
		}
	}

	return "", TrackSourceNone
}
