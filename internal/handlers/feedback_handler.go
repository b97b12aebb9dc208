package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/services"
)

type feedbackApplicationService interface {
	Create(ctx context.Context, actorID int64, role string, input services.CreateFeedbackInput) (*models.Feedback, error)
	Update(ctx context.Context, actorID int64, role string, id int64, rating int, comment *string) (*models.Feedback, error)
	Delete(ctx context.Context, actorID int64, role string, id int64) error
	ListByPlayer(ctx context.Context, actorID int64, role string, playerID int64) ([]models.Feedback, error)
}

type FeedbackHandler struct {
	service feedbackApplicationService
}

func NewFeedbackHandler(service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

type createFeedbackRequest struct {
	PlayerID    int64   `json:"player_id"`
	SessionDate string  `json:"session_date"`
	Rating      int     `json:"rating"`
	Comment     *string `json:"comment"`
}

type updateFeedbackRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	role, _ := actorRole(c)

	var req createFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	sessionDate, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_date must be YYYY-MM-DD"})
	}

	feedback, err := h.service.Create(c.Context(), actor, role, services.CreateFeedbackInput{
		PlayerID:    req.PlayerID,
		SessionDate: sessionDate,
		Rating:      req.Rating,
		Comment:     req.Comment,
	})
	if err != nil {
		return mapFeedbackError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"feedback": feedback})
}

func (h *FeedbackHandler) Update(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	role, _ := actorRole(c)

	feedbackID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid feedback id"})
	}

	var req updateFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	feedback, err := h.service.Update(c.Context(), actor, role, feedbackID, req.Rating, req.Comment)
	if err != nil {
		return mapFeedbackError(c, err)
	}
	return c.JSON(fiber.Map{"feedback": feedback})
}

func (h *FeedbackHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	role, _ := actorRole(c)

	feedbackID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid feedback id"})
	}

	if err := h.service.Delete(c.Context(), actor, role, feedbackID); err != nil {
		return mapFeedbackError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FeedbackHandler) ListByPlayer(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	role, _ := actorRole(c)

	playerID, err := parseIDParam(c, "playerID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid player id"})
	}

	feedbacks, err := h.service.ListByPlayer(c.Context(), actor, role, playerID)
	if err != nil {
		return mapFeedbackError(c, err)
	}
	return c.JSON(fiber.Map{"feedbacks": feedbacks})
}

func mapFeedbackError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not allowed to modify this feedback"})
	case errors.Is(err, services.ErrOutOfWindow):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Feedback can only be edited within 48 hours of creation"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Feedback not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process feedback request"})
	}
}
