package progress

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenovivo/trenovivo/pkg/ctdf"
)

func measuredStopRun(stationID string, kind ctdf.StopKind) *ctdf.TrainRun {
	return &ctdf.TrainRun{
		Number:      "9615",
		State:       ctdf.ProgressStateEnRoute,
		StateSource: ctdf.StateSourceDetailedProgress,
		TripDelay:   ctdf.DelaySignal{Minutes: 3, Confidence: ctdf.ConfidenceNotional},
		Stops: []ctdf.Stop{
			{
				StationID:        ctdf.ParseStationCode(stationID),
				Kind:             kind,
				DelayAtArrival:   10,
				DelayAtDeparture: 12,
			},
		},
	}
}

func TestResolveDelayPrefersPerStop(t *testing.T) {
	run := measuredStopRun("S01700", ctdf.StopKindIntermediate)
	board := &ctdf.BoardEntry{
		BoardDelay: ctdf.DelaySignal{Minutes: 99, Confidence: ctdf.ConfidenceReported},
	}

	delay := ResolveDelay(run, ctdf.ParseStationCode("S01700"), board)
	assert.Equal(t, 10, delay.Minutes)
	assert.Equal(t, ctdf.ConfidenceMeasured, delay.Confidence)
}

func TestResolveDelayOriginUsesDeparture(t *testing.T) {
	run := measuredStopRun("S01700", ctdf.StopKindOrigin)

	delay := ResolveDelay(run, ctdf.ParseStationCode("S01700"), nil)
	assert.Equal(t, 12, delay.Minutes)
	assert.Equal(t, ctdf.ConfidenceMeasured, delay.Confidence)
}

func TestResolveDelayFallsBackToBoard(t *testing.T) {
	// Observed station is not among the detailed stops
	run := measuredStopRun("S01700", ctdf.StopKindIntermediate)
	board := &ctdf.BoardEntry{
		BoardDelay: ctdf.DelaySignal{Minutes: 7, Confidence: ctdf.ConfidenceReported},
	}

	delay := ResolveDelay(run, ctdf.ParseStationCode("S09999"), board)
	assert.Equal(t, 7, delay.Minutes)
	assert.Equal(t, ctdf.ConfidenceReported, delay.Confidence)
}

func TestResolveDelayFallsBackToTripDelay(t *testing.T) {
	run := measuredStopRun("S01700", ctdf.StopKindIntermediate)

	delay := ResolveDelay(run, ctdf.ParseStationCode("S09999"), nil)
	assert.Equal(t, 3, delay.Minutes)
	assert.Equal(t, ctdf.ConfidenceNotional, delay.Confidence)
}

func TestResolveDelayNothingKnown(t *testing.T) {
	delay := ResolveDelay(nil, ctdf.ParseStationCode("S01700"), nil)
	assert.Equal(t, ctdf.ConfidenceAbsent, delay.Confidence)
}

func TestResolveDelayIgnoresStopsOfFallbackRun(t *testing.T) {
	// A board-sourced state means the per-stop figures never existed
	run := measuredStopRun("S01700", ctdf.StopKindIntermediate)
	run.StateSource = ctdf.StateSourceBoard
	board := &ctdf.BoardEntry{
		BoardDelay: ctdf.DelaySignal{Minutes: 7, Confidence: ctdf.ConfidenceReported},
	}

	delay := ResolveDelay(run, ctdf.ParseStationCode("S01700"), board)
	assert.Equal(t, 7, delay.Minutes)
}

func TestResolveTrackPrecedence(t *testing.T) {
	stationID := ctdf.ParseStationCode("S01700")

	run := measuredStopRun("S01700", ctdf.StopKindIntermediate)
	run.Stops[0].ActualArrivalTrack = "4"
	run.Stops[0].ScheduledArrivalTrack = "6"

	board := &ctdf.BoardEntry{ScheduledTrack: "1", ActualTrack: "2"}

	track, source := ResolveTrack(run, stationID, board)
	assert.Equal(t, "4", track)
	assert.Equal(t, TrackSourceProgressActual, source)

	run.Stops[0].ActualArrivalTrack = ""
	track, source = ResolveTrack(run, stationID, board)
	assert.Equal(t, "6", track)
	assert.Equal(t, TrackSourceProgressScheduled, source)

	run.Stops[0].ScheduledArrivalTrack = ""
	track, source = ResolveTrack(run, stationID, board)
	assert.Equal(t, "2", track)
	assert.Equal(t, TrackSourceBoard, source)

	board.ActualTrack = ""
	track, source = ResolveTrack(run, stationID, board)
	assert.Equal(t, "1", track)
	assert.Equal(t, TrackSourceBoard, source)

	board.ScheduledTrack = ""
	track, source = ResolveTrack(run, stationID, board)
	assert.Empty(t, track)
	assert.Equal(t, TrackSourceNone, source)
}

func TestFallbackRun(t *testing.T) {
	scheduled := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	entry := &ctdf.BoardEntry{
		Number:   "2027",
		Category: "REG",
		Headsign: "MILANO CENTRALE",
		RunKey: ctdf.RunKey{
			OriginStationID: ctdf.ParseStationCode("S01529"),
			DepartureDate:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		ScheduledTime: &scheduled,
		BoardDelay:    ctdf.DelaySignal{Minutes: 8, Confidence: ctdf.ConfidenceReported},
		Warning:       "Cancellato da MONZA",
	}

	run := FallbackRun(entry)

	assert.Equal(t, "2027", run.Number)
	assert.Equal(t, "REG", run.Category)
	assert.Equal(t, "MILANO CENTRALE", run.Headsign)
	assert.Equal(t, entry.RunKey, run.RunKey)
	assert.Equal(t, "Cancellato da MONZA", run.Warning)

	assert.Equal(t, entry.BoardDelay, run.TripDelay)
	assert.Equal(t, ctdf.ProgressStateUnknown, run.State)
	assert.Equal(t, ctdf.StateSourceNone, run.StateSource)
	assert.True(t, run.Incomplete)
	assert.Empty(t, run.Stops)
}

func TestApplyBoardFallback(t *testing.T) {
	notDeparted := &ctdf.TrainRun{State: ctdf.ProgressStateUnknown, StateSource: ctdf.StateSourceNone}
	ApplyBoardFallback(notDeparted, &ctdf.BoardEntry{DepartedFromOrigin: false})
	assert.Equal(t, ctdf.ProgressStateScheduled, notDeparted.State)
	assert.Equal(t, ctdf.StateSourceBoard, notDeparted.StateSource)

	departed := &ctdf.TrainRun{State: ctdf.ProgressStateUnknown, StateSource: ctdf.StateSourceNone}
	ApplyBoardFallback(departed, &ctdf.BoardEntry{DepartedFromOrigin: true})
	assert.Equal(t, ctdf.ProgressStateEnRoute, departed.State)
	assert.Equal(t, ctdf.StateSourceBoard, departed.StateSource)

	// A detailed detection is never overwritten by the board view
	detected := &ctdf.TrainRun{State: ctdf.ProgressStateArrived, StateSource: ctdf.StateSourceDetailedProgress}
	ApplyBoardFallback(detected, &ctdf.BoardEntry{DepartedFromOrigin: false})
	assert.Equal(t, ctdf.ProgressStateArrived, detected.State)
	assert.Equal(t, ctdf.StateSourceDetailedProgress, detected.StateSource)
}

func TestEnrichBoardDegradesPerEntry(t *testing.T) {
	reconciler := testReconciler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/9615/") {
			w.Write([]byte(enRoutePayload))
		}
		// Anything else answers empty, the upstream's "no such train"
	})

	entries := []ctdf.BoardEntry{
		{
			Number: "9615",
			RunKey: ctdf.RunKey{
				OriginStationID: ctdf.ParseStationCode("S01700"),
				DepartureDate:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			Number:             "77777",
			DepartedFromOrigin: true,
			RunKey: ctdf.RunKey{
				OriginStationID: ctdf.ParseStationCode("S01529"),
				DepartureDate:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			},
			BoardDelay: ctdf.DelaySignal{Minutes: 4, Confidence: ctdf.ConfidenceReported},
		},
	}

	enriched := reconciler.EnrichBoard(context.Background(), entries, ctdf.ParseStationCode("S05043"))
	require.Len(t, enriched, 2)

	byNumber := map[string]EnrichedEntry{}
	for _, e := range enriched {
		byNumber[e.Board.Number] = e
	}

	detailed := byNumber["9615"]
	require.NotNil(t, detailed.Run)
	assert.Equal(t, ctdf.ProgressStateEnRoute, detailed.Run.State)
	assert.Equal(t, ctdf.StateSourceDetailedProgress, detailed.Run.StateSource)
	assert.Equal(t, ctdf.ConfidenceMeasured, detailed.Delay.Confidence)
	assert.Equal(t, 5, detailed.Delay.Minutes)
	assert.Equal(t, "17", detailed.Track)
	assert.Equal(t, TrackSourceProgressScheduled, detailed.TrackSource)

	fallback := byNumber["77777"]
	require.NotNil(t, fallback.Run)
	assert.True(t, fallback.Run.Incomplete)
	assert.Equal(t, ctdf.ProgressStateEnRoute, fallback.Run.State)
	assert.Equal(t, ctdf.StateSourceBoard, fallback.Run.StateSource)
	assert.Equal(t, ctdf.ConfidenceReported, fallback.Delay.Confidence)
	assert.Equal(t, 4, fallback.Delay.Minutes)
}
