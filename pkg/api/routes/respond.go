package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/trenovivo/trenovivo/pkg/viaggiatreno"
)

// renderError maps the typed error taxonomy onto HTTP statuses. Raw upstream
// error bodies never pass through here; the message is always ours.
func renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, viaggiatreno.ErrNotFound), errors.Is(err, viaggiatreno.ErrTrainNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, viaggiatreno.ErrUpstreamTimeout):
		status = fiber.StatusGatewayTimeout
	case errors.Is(err, viaggiatreno.ErrUpstreamUnavailable), errors.Is(err, viaggiatreno.ErrUpstreamMalformed):
		status = fiber.StatusBadGateway
	}

	c.SendStatus(status)
	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}

// renderReduced marshals a response through sheriff group filtering, so
// internal-tagged fields stay off the wire.
func renderReduced(c *fiber.Ctx, value any, groups ...string) error {
	if len(groups) == 0 {
		groups = []string{"basic"}
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{Groups: groups}, value)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce response",
		})
	}

	return c.JSON(reduced)
}

func responseGroups(c *fiber.Ctx) []string {
	if c.QueryBool("detailed", false) {
		return []string{"basic", "detailed"}
	}

	return []string{"basic"}
}
