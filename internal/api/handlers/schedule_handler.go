package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilm27/postpilot/internal/service"
	"github.com/sahilm27/postpilot/internal/transfer"
)

type ScheduleHandler struct {
	s service.ScheduleService
}

func NewScheduleHandler(service service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{s: service}
}

func (h *ScheduleHandler) CreateSchedule(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var sc transfer.ScheduleCreation
	if err := c.BodyParser(&sc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	scheduleID, err := h.s.Create(c.Context(), userID, &sc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":     "Schedule created successfully",
		"schedule_id": scheduleID,
	})
}

func (h *ScheduleHandler) ListSchedules(c *fiber.Ctx) error {
	userID := GetUserID(c)
	scheduleId := c.QueryInt("id", 0)

	if scheduleId != 0 {
		schedule, err := h.s.ScheduleInfo(c.Context(), int64(scheduleId), userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to get schedule info",
			})
		}

		return c.Status(fiber.StatusOK).JSON(schedule)
	}

	schedules, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list schedules",
		})
	}

	return c.Status(fiber.StatusOK).JSON(schedules)
}

func (h *ScheduleHandler) PreviewSchedule(c *fiber.Ctx) error {
	userID := GetUserID(c)
	scheduleId := c.QueryInt("id", 0)

	preview, err := h.s.Preview(c.Context(), int64(scheduleId), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to preview schedule",
		})
	}

	return c.Status(fiber.StatusOK).JSON(preview)
}

func (h *ScheduleHandler) PauseSchedule(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *ScheduleHandler) ResumeSchedule(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *ScheduleHandler) setActive(c *fiber.Ctx, active bool) error {
	userID := GetUserID(c)
	scheduleId := c.QueryInt("id", 0)

	err := h.s.SetActive(c.Context(), int64(scheduleId), userID, active)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to update schedule",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ScheduleHandler) ReplaceQueue(c *fiber.Ctx) error {
	userID := GetUserID(c)
	scheduleId := c.QueryInt("id", 0)

	var qr transfer.QueueReplacement
	if err := c.BodyParser(&qr); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	err := h.s.ReplaceQueue(c.Context(), int64(scheduleId), userID, qr.ContentQueue)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to replace content queue",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ScheduleHandler) RemoveSchedule(c *fiber.Ctx) error {
	userID := GetUserID(c)
	scheduleId := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), int64(scheduleId), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove schedule",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
