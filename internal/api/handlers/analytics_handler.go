package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilm27/postpilot/internal/service"
)

type AnalyticsHandler struct {
	s service.AnalyticsService
}

func NewAnalyticsHandler(service service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{s: service}
}

func (h *AnalyticsHandler) AccountHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountId := c.QueryInt("account_id", 0)

	snapshots, err := h.s.AccountHistory(c.Context(), userID, int64(accountId))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get account history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(snapshots)
}
