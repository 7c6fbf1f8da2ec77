package routes

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trenovivo/trenovivo/pkg/boards"
	"github.com/trenovivo/trenovivo/pkg/ctdf"
	"github.com/trenovivo/trenovivo/pkg/progress"
	"github.com/trenovivo/trenovivo/pkg/stations"

	iso8601 "github.com/senseyeio/duration"
)

const defaultBoardLimit = 10

func StationsRouter(router fiber.Router, directory *stations.Directory, boardAdapter *boards.Adapter, reconciler *progress.Reconciler) {
	router.Get("/search/:query", searchStations(directory))
	router.Get("/regions/:code", listRegionStations(directory))
	router.Get("/:identifier", getStation(directory))
	router.Get("/:identifier/region", getStationRegion(directory))
	router.Get("/:identifier/departures", getStationBoard(boardAdapter, reconciler, ctdf.BoardEntryTypeDeparture))
	router.Get("/:identifier/arrivals", getStationBoard(boardAdapter, reconciler, ctdf.BoardEntryTypeArrival))
}

func searchStations(directory *stations.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Params("query")

		var results []ctdf.Station
		var err error

		if c.QueryBool("detailed", false) {
			results, err = directory.SearchDetailed(c.UserContext(), query)
		} else {
			results, err = directory.SearchByPrefix(c.UserContext(), query)
		}

		if err != nil {
			return renderError(c, err)
		}

		return renderReduced(c, results, responseGroups(c)...)
	}
}

func getStation(directory *stations.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")

		region, err := directory.RegionOf(c.UserContext(), identifier)
		if err != nil {
			return renderError(c, err)
		}

		station, err := directory.Detail(c.UserContext(), identifier, region)
		if err != nil {
			return renderError(c, err)
		}

		return renderReduced(c, station, responseGroups(c)...)
	}
}

func getStationRegion(directory *stations.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		region, err := directory.RegionOf(c.UserContext(), c.Params("identifier"))
		if err != nil {
			return renderError(c, err)
		}

		name, _ := stations.RegionName(region)

		return c.JSON(fiber.Map{
			"region":        region,
			"name":          name,
			"weatherHazard": region.IsWeatherHazard(),
		})
	}
}

func listRegionStations(directory *stations.Directory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := strconv.Atoi(c.Params("code"))
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Region code should be an integer",
			})
		}

		results, err := directory.ListByRegion(c.UserContext(), ctdf.RegionCode(code))
		if err != nil {
			return renderError(c, err)
		}

		return renderReduced(c, results, responseGroups(c)...)
	}
}

func getStationBoard(boardAdapter *boards.Adapter, reconciler *progress.Reconciler, boardType ctdf.BoardEntryType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")

		limit, err := strconv.Atoi(c.Query("count", strconv.Itoa(defaultBoardLimit)))
		if err != nil || limit < 0 {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter count should be a non-negative integer",
			})
		}

		boardTime := time.Now()
		if datetimeQuery := c.Query("datetime"); datetimeQuery != "" {
			boardTime, err = time.Parse(time.RFC3339, datetimeQuery)
			if err != nil {
				c.SendStatus(fiber.StatusBadRequest)
				return c.JSON(fiber.Map{
					"error": "Parameter datetime should be an RFC3339/ISO8601 datetime",
				})
			}
		}

		// An ISO8601 window shifts the queried instant, e.g. PT1H30M
		if windowQuery := c.Query("window"); windowQuery != "" {
			window, err := iso8601.ParseISO8601(windowQuery)
			if err != nil {
				c.SendStatus(fiber.StatusBadRequest)
				return c.JSON(fiber.Map{
					"error": "Parameter window should be an ISO8601 duration",
				})
			}
			boardTime = window.Shift(boardTime)
		}

		var entries []ctdf.BoardEntry
		if boardType == ctdf.BoardEntryTypeDeparture {
			entries, err = boardAdapter.Departures(c.UserContext(), identifier, boardTime)
		} else {
			entries, err = boardAdapter.Arrivals(c.UserContext(), identifier, boardTime)
		}
		if err != nil {
			return renderError(c, err)
		}

		if len(entries) > limit {
			entries = entries[:limit]
		}

		if !c.QueryBool("enrich", false) {
			return renderReduced(c, entries, responseGroups(c)...)
		}

		enriched := reconciler.EnrichBoard(c.UserContext(), entries, ctdf.ParseStationCode(identifier))

		return renderReduced(c, enriched, responseGroups(c)...)
	}
}
