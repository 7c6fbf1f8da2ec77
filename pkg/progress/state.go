package progress

import (
	"strings"

	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"golang.org/x/exp/slices"
)

// deriveState runs the per-train state machine: the presence and position of
// the last detection among the ordered stops decides everything. A record
// with detail but no detection is Unknown, never Scheduled; a record with no
// detail at all is Unknown with StateSourceNone so callers know an explicit
// board fallback is still owed.
func deriveState(run *ctdf.TrainRun, suppliesDetail bool) (ctdf.ProgressState, ctdf.StateSource) {
	if !suppliesDetail {
		return ctdf.ProgressStateUnknown, ctdf.StateSourceNone
	}

	if run.LastDetectionStation == "" {
		return ctdf.ProgressStateUnknown, ctdf.StateSourceDetailedProgress
	}

	detectionIndex := slices.IndexFunc(run.Stops, func(stop ctdf.Stop) bool {
		return strings.EqualFold(stop.StationName, run.LastDetectionStation)
	})

	if detectionIndex == -1 {
		// Detected at a station that is not one of the stops: a pass-through
		// detection point or a renumbering gap artifact. The train is moving;
		// whether it is done depends on the destination stop.
		if destinationArrived(run) {
			return ctdf.ProgressStateArrived, ctdf.StateSourceDetailedProgress
		}

		return ctdf.ProgressStateEnRoute, ctdf.StateSourceDetailedProgress
	}

	if detectionIndex == len(run.Stops)-1 {
		return ctdf.ProgressStateArrived, ctdf.StateSourceDetailedProgress
	}

	return ctdf.ProgressStateEnRoute, ctdf.StateSourceDetailedProgress
}

func destinationArrived(run *ctdf.TrainRun) bool {
	for i := len(run.Stops) - 1; i >= 0; i-- {
		if run.Stops[i].Kind == ctdf.StopKindDestination {
			return run.Stops[i].ActualArrival != nil
		}
	}

	return false
}

// ApplyBoardFallback fills in the state a board row implies, used when the
// detailed record supplied no detail at all. The fallback is recorded in
// StateSource so it can never be mistaken for a detection.
func ApplyBoardFallback(run *ctdf.TrainRun, entry *ctdf.BoardEntry) {
	if run.StateSource != ctdf.StateSourceNone {
		return
	}

	run.StateSource = ctdf.StateSourceBoard

	if !entry.DepartedFromOrigin {
		run.State = ctdf.ProgressStateScheduled
		return
	}

	run.State = ctdf.ProgressStateEnRoute
}
