package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/temporal"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

func StatsRouter(router fiber.Router, client *viaggiatreno.Client) {
	router.Get("/", networkStats(client))
}

func networkStats(client *viaggiatreno.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := client.Statistics(c.UserContext(), time.Now().UnixMilli())
		if err != nil {
			return renderError(c, err)
		}

		stats := ctdf.NetworkStats{
			TrainsSinceMidnight: raw.TrainsSinceMidnight,
			TrainsRunning:       raw.TrainsRunning,
		}
		if lastUpdate, err := temporal.ParseEpochMillis(raw.LastUpdate); err == nil {
			stats.LastUpdate = lastUpdate
		}

		return renderReduced(c, stats, responseGroups(c)...)
	}
}
