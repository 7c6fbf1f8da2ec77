package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/journeyplan"
)

func JourneysRouter(router fiber.Router, planner *journeyplan.Planner) {
	router.Get("/:origin/:destination", searchJourneys(planner))
}

func searchJourneys(planner *journeyplan.Planner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		searchTime := time.Now()

		if datetimeQuery := c.Query("datetime"); datetimeQuery != "" {
			var err error
			searchTime, err = time.Parse(time.RFC3339, datetimeQuery)
			if err != nil {
				c.SendStatus(fiber.StatusBadRequest)
				return c.JSON(fiber.Map{
					"error": "Parameter datetime should be an RFC3339/ISO8601 datetime",
				})
			}
		}

		candidates, err := planner.Search(
			c.UserContext(),
			ctdf.ParseStationCode(c.Params("origin")),
			ctdf.ParseStationCode(c.Params("destination")),
			searchTime,
		)
		if err != nil {
			return renderError(c, err)
		}

		return renderReduced(c, candidates, responseGroups(c)...)
	}
}
