package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/services"
)

type groupApplicationService interface {
	CreateGroup(ctx context.Context, input services.GroupInput) (*models.Group, error)
	UpdateGroup(ctx context.Context, id int64, input services.GroupInput) (*models.Group, error)
	GetGroup(ctx context.Context, id int64) (*models.GroupDetail, error)
	ListGroups(ctx context.Context, activeOnly bool) ([]models.GroupDetail, error)
	DeleteGroup(ctx context.Context, id int64) error
	DeactivateGroup(ctx context.Context, id int64) (*models.Group, error)
	AddPlayers(ctx context.Context, groupID int64, playerIDs []int64) ([]models.GroupPlayer, error)
	RemovePlayer(ctx context.Context, groupID, playerID int64) error
	AssignCoach(ctx context.Context, groupID, coachID int64, isPrimary bool) (*models.CoachGroup, error)
	UnassignCoach(ctx context.Context, groupID, coachID int64) error
	ListCoaches(ctx context.Context, groupID int64) ([]models.CoachGroup, error)
	CreateScheduleSession(ctx context.Context, groupID int64, input services.ScheduleSessionInput) (*models.ScheduleSession, error)
	UpdateScheduleSession(ctx context.Context, id int64, input services.ScheduleSessionInput) (*models.ScheduleSession, error)
	DeleteScheduleSession(ctx context.Context, id int64) error
	ListSchedule(ctx context.Context, groupID int64) ([]models.ScheduleSession, error)
}

type GroupHandler struct {
	service groupApplicationService
}

func NewGroupHandler(service *services.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

type groupRequest struct {
	Name       string `json:"name"`
	Level      string `json:"level"`
	MaxPlayers int    `json:"max_players"`
	IsActive   *bool  `json:"is_active"`
}

type addPlayersRequest struct {
	PlayerIDs []int64 `json:"player_ids"`
}

type assignCoachRequest struct {
	CoachID   int64 `json:"coach_id"`
	IsPrimary bool  `json:"is_primary"`
}

type scheduleSessionRequest struct {
	DayOfWeek int     `json:"day_of_week"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Location  *string `json:"location"`
	CoachID   *int64  `json:"coach_id"`
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	group, err := h.service.CreateGroup(c.Context(), services.GroupInput{
		Name:       req.Name,
		Level:      req.Level,
		MaxPlayers: req.MaxPlayers,
	})
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"group": group})
}

func (h *GroupHandler) UpdateGroup(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	group, err := h.service.UpdateGroup(c.Context(), groupID, services.GroupInput{
		Name:       req.Name,
		Level:      req.Level,
		MaxPlayers: req.MaxPlayers,
		IsActive:   isActive,
	})
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.JSON(fiber.Map{"group": group})
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	group, err := h.service.GetGroup(c.Context(), groupID)
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.JSON(fiber.Map{"group": group})
}

func (h *GroupHandler) ListGroups(c *fiber.Ctx) error {
	role, _ := actorRole(c)
	activeOnly := role != models.RoleAdmin || c.Query("all") == ""

	groups, err := h.service.ListGroups(c.Context(), activeOnly)
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

func (h *GroupHandler) DeleteGroup(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	if err := h.service.DeleteGroup(c.Context(), groupID); err != nil {
		if errors.Is(err, services.ErrInvalidState) {
			return c.Status(fiber.StatusUnprocessableEntity).
				JSON(fiber.Map{"error": "Group has members, attendance history or schedule sessions; deactivate it instead"})
		}
		return mapGroupError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) DeactivateGroup(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	group, err := h.service.DeactivateGroup(c.Context(), groupID)
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.JSON(fiber.Map{"group": group})
}

func (h *GroupHandler) AddPlayers(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	var req addPlayersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.PlayerIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player_ids must not be empty"})
	}

	members, err := h.service.AddPlayers(c.Context(), groupID, req.PlayerIDs)
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"members": members})
}

func (h *GroupHandler) RemovePlayer(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}
	playerID, err := parseIDParam(c, "playerID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid player id"})
	}

	if err := h.service.RemovePlayer(c.Context(), groupID, playerID); err != nil {
		return mapGroupError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) AssignCoach(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	var req assignCoachRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.CoachID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "coach_id is required"})
	}

	assignment, err := h.service.AssignCoach(c.Context(), groupID, req.CoachID, req.IsPrimary)
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"assignment": assignment})
}

func (h *GroupHandler) UnassignCoach(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}
	coachID, err := parseIDParam(c, "coachID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid coach id"})
	}

	if err := h.service.UnassignCoach(c.Context(), groupID, coachID); err != nil {
		return mapGroupError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) ListCoaches(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	assignments, err := h.service.ListCoaches(c.Context(), groupID)
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.JSON(fiber.Map{"coaches": assignments})
}

func (h *GroupHandler) CreateScheduleSession(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	var req scheduleSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.service.CreateScheduleSession(c.Context(), groupID, services.ScheduleSessionInput{
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		CoachID:   req.CoachID,
	})
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"schedule_session": session})
}

func (h *GroupHandler) UpdateScheduleSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "sessionID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule session id"})
	}

	var req scheduleSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.service.UpdateScheduleSession(c.Context(), sessionID, services.ScheduleSessionInput{
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		CoachID:   req.CoachID,
	})
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.JSON(fiber.Map{"schedule_session": session})
}

func (h *GroupHandler) DeleteScheduleSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "sessionID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid schedule session id"})
	}

	if err := h.service.DeleteScheduleSession(c.Context(), sessionID); err != nil {
		return mapGroupError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GroupHandler) ListSchedule(c *fiber.Ctx) error {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	sessions, err := h.service.ListSchedule(c.Context(), groupID)
	if err != nil {
		return mapGroupError(c, err)
	}
	return c.JSON(fiber.Map{"schedule_sessions": sessions})
}

func mapGroupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrCapacityExceeded):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Group capacity exceeded"})
	case errors.Is(err, services.ErrInvalidState):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process group request"})
	}
}
