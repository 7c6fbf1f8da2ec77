package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/trenovivo/trenovivo/pkg/api/routes"
	"github.com/trenovivo/trenovivo/pkg/boards"
	"github.com/trenovivo/trenovivo/pkg/journeyplan"
	"github.com/trenovivo/trenovivo/pkg/metrics"
	"github.com/trenovivo/trenovivo/pkg/progress"
	"github.com/trenovivo/trenovivo/pkg/stations"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

// SetupServer wires the normalization components behind the read API. The
// presentation layer only ever sees the typed ctdf entities or a typed
// error, never a raw upstream shape.
func SetupServer(listen string) error {
	collector := metrics.NewCollector()
	client := viaggiatreno.NewClient(collector)

	directory := stations.NewDirectory(client)
	boardAdapter := boards.NewAdapter(client)
	reconciler := progress.NewReconciler(client)
	planner := journeyplan.NewPlanner(client)

	webApp := fiber.New()
	webApp.Use(NewLogger())

	webApp.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.StationsRouter(group.Group("/stations"), directory, boardAdapter, reconciler)
	routes.TrainsRouter(group.Group("/trains"), reconciler)
	routes.JourneysRouter(group.Group("/journeys"), planner)
	routes.StatsRouter(group.Group("/stats"), client)

	return webApp.Listen(listen)
}
