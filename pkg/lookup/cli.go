package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"

	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/journeyplan"
	"github.com/trenovivo/trenovivo/pkg/metrics"
	"github.com/trenovivo/trenovivo/pkg/progress"
	"github.com/trenovivo/trenovivo/pkg/stations"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

// RegisterCLI provides ad-hoc terminal lookups against the live upstream,
// mostly useful when poking at how a particular station or train normalizes.
func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "lookup",
		Usage: "Query the normalized entities from the terminal",
		Subcommands: []*cli.Command{
			{
				Name:      "station",
				Usage:     "search stations by name prefix",
				ArgsUsage: "<query>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return errors.New("expects a single search query")
					}

					directory := stations.NewDirectory(newClient())

					matches, err := directory.SearchByPrefix(context.Background(), c.Args().First())
					if err != nil {
						return err
					}

					pretty.Println(matches)
					return nil
				},
			},
			{
				Name:      "train",
				Usage:     "show the reconciled run for a train number",
				ArgsUsage: "<number>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return errors.New("expects a single train number")
					}

					reconciler := progress.NewReconciler(newClient())

					run, err := reconciler.ProgressByNumber(context.Background(), c.Args().First())
					if err != nil {
						return err
					}

					pretty.Println(run)
					return nil
				},
			},
			{
				Name:      "journey",
				Usage:     "search journeys between two stations, departing now",
				ArgsUsage: "<origin> <destination>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						return errors.New("expects an origin and a destination station code")
					}

					planner := journeyplan.NewPlanner(newClient())

					candidates, err := planner.Search(
						context.Background(),
						ctdf.ParseStationCode(c.Args().Get(0)),
						ctdf.ParseStationCode(c.Args().Get(1)),
						time.Now(),
					)
					if err != nil {
						return err
					}

					pretty.Println(candidates)
					return nil
				},
			},
		},
	}
}

func newClient() *viaggiatreno.Client {
	return viaggiatreno.NewClient(metrics.NewCollector())
}
