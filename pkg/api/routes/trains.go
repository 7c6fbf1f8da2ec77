package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/progress"
)

func TrainsRouter(router fiber.Router, reconciler *progress.Reconciler) {
	router.Get("/:number", lookupTrain(reconciler))
	router.Get("/:number/progress", getTrainProgress(reconciler))
}

func lookupTrain(reconciler *progress.Reconciler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		refs, err := reconciler.LookupNumber(c.UserContext(), c.Params("number"))
		if err != nil {
			return renderError(c, err)
		}

		return renderReduced(c, refs, responseGroups(c)...)
	}
}

func getTrainProgress(reconciler *progress.Reconciler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		number := c.Params("number")

		originQuery := c.Query("origin")
		dateQuery := c.Query("date")

		// Without an explicit composite key the number alone is resolved
		// through the lookup endpoint first
		if originQuery == "" || dateQuery == "" {
			run, err := reconciler.ProgressByNumber(c.UserContext(), number)
			if err != nil {
				return renderError(c, err)
			}

			return renderReduced(c, run, responseGroups(c)...)
		}

		departureDate, err := time.Parse("2006-01-02", dateQuery)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter date should be a YYYY-MM-DD date",
			})
		}

		key := ctdf.RunKey{
			OriginStationID: ctdf.ParseStationCode(originQuery),
			DepartureDate:   departureDate,
		}

		run, err := reconciler.TrainProgress(c.UserContext(), key, number)
		if err != nil {
			return renderError(c, err)
		}

		return renderReduced(c, run, responseGroups(c)...)
	}
}
