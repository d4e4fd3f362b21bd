package handlers

import (
	"context"
	"log/slog"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/poliwatch/internal/service"
	"github.com/jjenkins/poliwatch/internal/templates"
)

// SummaryReader calculates dataset-wide counts
type SummaryReader interface {
	Calculate(ctx context.Context) (*service.Summary, error)
}

func HomeHandler(summaries SummaryReader, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := summaries.Calculate(c.UserContext())
		if err != nil {
			// render the empty state rather than failing the landing page
			logger.Error("failed to calculate summary", "error", err)
			summary = &service.Summary{}
		}

		page := templates.Home(summary)
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}

// SummaryHandler returns dataset-wide counts as JSON
func SummaryHandler(summaries SummaryReader, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := summaries.Calculate(c.UserContext())
		if err != nil {
			logger.Error("failed to calculate summary", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Error loading summary"})
		}
		return c.JSON(summary)
	}
}
