package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/temporal"
	"github.com/trenovivo/trenovivo/pkg/util"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

// LookupNumber resolves a bare train number to the run references the
// upstream knows for it. The autocomplete endpoint answers with two observed
// line formats:
//
//	35299 - MILANO CENTRALE - 16/11/24|35299-S01700-1731711600000
//	2033 - TORINO PORTA NUOVA|2033-S00219-1731711600000
//
// Only the machine half after the pipe is authoritative; the date before it
// is display text and not always present.
func (r *Reconciler) LookupNumber(ctx context.Context, trainNumber string) ([]ctdf.RunRef, error) {
	raw, err := r.client.TrainNumberAutocomplete(ctx, trainNumber)
	if err != nil {
		return nil, err
	}

	var refs []ctdf.RunRef

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		ref, err := parseRunRefLine(line)
		if err != nil {
			log.Debug().Err(err).Str("line", line).Msg("Skipping unparseable train number candidate")
			continue
		}

		refs = append(refs, ref)
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("train %s: %w", trainNumber, viaggiatreno.ErrTrainNotFound)
	}

	return refs, nil
}

func parseRunRefLine(line string) (ctdf.RunRef, error) {
	display, machine, found := strings.Cut(line, "|")
	if !found {
		return ctdf.RunRef{}, fmt.Errorf("missing machine half: %w", viaggiatreno.ErrUpstreamMalformed)
	}

	machineParts := strings.Split(machine, "-")
	if len(machineParts) < 3 {
		return ctdf.RunRef{}, fmt.Errorf("machine half %q: %w", machine, viaggiatreno.ErrUpstreamMalformed)
	}

	var departureEpochMs int64
	if _, err := fmt.Sscanf(machineParts[2], "%d", &departureEpochMs); err != nil {
		return ctdf.RunRef{}, fmt.Errorf("departure timestamp %q: %w", machineParts[2], viaggiatreno.ErrUpstreamMalformed)
	}

	departureDate, err := temporal.ParseEpochMillis(departureEpochMs)
	if err != nil {
		return ctdf.RunRef{}, err
	}

	ref := ctdf.RunRef{
		Number: machineParts[0],
		RunKey: ctdf.RunKey{
			OriginStationID: ctdf.ParseStationCode(machineParts[1]),
			DepartureDate:   temporal.DateOnly(departureDate),
		},
	}

	if displayParts := strings.SplitN(display, " - ", 3); len(displayParts) >= 2 {
		ref.OriginName = util.NormalizeDisplayName(displayParts[1])
	}

	return ref, nil
}

// ProgressByNumber is the number-only entry point: it resolves the number to
// its run references and fetches detailed progress for the first one. Every
// reference resolves to the same composite key whichever of a renumbered
// run's numbers was asked for.
func (r *Reconciler) ProgressByNumber(ctx context.Context, trainNumber string) (*ctdf.TrainRun, error) {
	refs, err := r.LookupNumber(ctx, trainNumber)
	if err != nil {
		return nil, err
	}

	return r.TrainProgress(ctx, refs[0].RunKey, refs[0].Number)
}
