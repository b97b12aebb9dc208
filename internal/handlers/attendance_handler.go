package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/services"
)

type attendanceApplicationService interface {
	LogAttendance(ctx context.Context, markedBy int64, role string, input services.LogAttendanceInput) (*services.LogAttendanceResult, error)
	LogBatch(ctx context.Context, markedBy int64, role string, input services.LogBatchInput) ([]services.BatchEntryResult, error)
	UpdateRecord(ctx context.Context, actorID int64, role string, id int64, status string, notes *string) (*models.Attendance, error)
	ListByOccurrence(ctx context.Context, role string, scheduleSessionID int64, sessionDate time.Time) ([]models.Attendance, error)
	ListByPlayer(ctx context.Context, actorID int64, role string, playerID int64, limit, offset int) ([]models.Attendance, int, error)
}

type AttendanceHandler struct {
	service attendanceApplicationService
}

func NewAttendanceHandler(service *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

type logAttendanceRequest struct {
	PlayerID          int64   `json:"player_id"`
	GroupID           int64   `json:"group_id"`
	ScheduleSessionID int64   `json:"schedule_session_id"`
	SessionDate       string  `json:"session_date"`
	Status            string  `json:"status"`
	Notes             *string `json:"notes"`
}

type batchEntryRequest struct {
	PlayerID int64   `json:"player_id"`
	Status   string  `json:"status"`
	Notes    *string `json:"notes"`
}

type logBatchRequest struct {
	GroupID           int64               `json:"group_id"`
	ScheduleSessionID int64               `json:"schedule_session_id"`
	SessionDate       string              `json:"session_date"`
	Entries           []batchEntryRequest `json:"entries"`
}

type updateAttendanceRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

func parseSessionDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}

func (h *AttendanceHandler) LogAttendance(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := actorRole(c)

	var req logAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.PlayerID <= 0 || req.GroupID <= 0 || req.ScheduleSessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player_id, group_id and schedule_session_id are required"})
	}
	sessionDate, err := parseSessionDate(req.SessionDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_date must be YYYY-MM-DD"})
	}

	result, err := h.service.LogAttendance(c.Context(), userID, role, services.LogAttendanceInput{
		PlayerID:          req.PlayerID,
		GroupID:           req.GroupID,
		ScheduleSessionID: req.ScheduleSessionID,
		SessionDate:       sessionDate,
		Status:            req.Status,
		Notes:             req.Notes,
	})
	if err != nil {
		return mapAttendanceError(c, err)
	}

	status := fiber.StatusCreated
	if result.Updated {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(result)
}

func (h *AttendanceHandler) LogBatch(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := actorRole(c)

	var req logBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.GroupID <= 0 || req.ScheduleSessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "group_id and schedule_session_id are required"})
	}
	if len(req.Entries) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "entries must not be empty"})
	}
	sessionDate, err := parseSessionDate(req.SessionDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_date must be YYYY-MM-DD"})
	}

	entries := make([]services.BatchEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		entries = append(entries, services.BatchEntry{
			PlayerID: entry.PlayerID,
			Status:   entry.Status,
			Notes:    entry.Notes,
		})
	}

	results, err := h.service.LogBatch(c.Context(), userID, role, services.LogBatchInput{
		GroupID:           req.GroupID,
		ScheduleSessionID: req.ScheduleSessionID,
		SessionDate:       sessionDate,
		Entries:           entries,
	})
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}

func (h *AttendanceHandler) UpdateRecord(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := actorRole(c)

	recordID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attendance id"})
	}

	var req updateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	record, err := h.service.UpdateRecord(c.Context(), userID, role, recordID, req.Status, req.Notes)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return c.JSON(fiber.Map{"attendance": record})
}

func (h *AttendanceHandler) ListByOccurrence(c *fiber.Ctx) error {
	role, _ := actorRole(c)

	scheduleSessionID, err := parseIDParam(c, "scheduleSessionID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule session id"})
	}
	sessionDate, err := parseSessionDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	records, err := h.service.ListByOccurrence(c.Context(), role, scheduleSessionID, sessionDate)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return c.JSON(fiber.Map{"attendance": records})
}

func (h *AttendanceHandler) ListByPlayer(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := actorRole(c)

	playerID, err := parseIDParam(c, "playerID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid player id"})
	}

	page, limit := parsePageParams(c)
	records, total, err := h.service.ListByPlayer(c.Context(), userID, role, playerID, limit, (page-1)*limit)
	if err != nil {
		return mapAttendanceError(c, err)
	}
	return c.JSON(fiber.Map{
		"attendance": records,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func mapAttendanceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrOutOfWindow):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "session_date is outside the allowed window"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process attendance request"})
	}
}
