package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/trenovivo/trenovivo/pkg/api"
	"github.com/trenovivo/trenovivo/pkg/lookup"

	_ "time/tzdata"
)

func main() {
	godotenv.Load()

	if os.Getenv("TRENOVIVO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRENOVIVO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "trenovivo",
		Description: "Normalized Italian railway information - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			lookup.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
