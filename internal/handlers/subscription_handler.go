package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/services"
)

type subscriptionApplicationService interface {
	Purchase(ctx context.Context, playerID int64, input services.PurchaseInput) (*models.SubscriptionDetail, error)
	Activate(ctx context.Context, subscriptionID int64) (*models.Subscription, error)
	Get(ctx context.Context, actorID int64, role string, subscriptionID int64) (*models.SubscriptionDetail, error)
	ListForPlayer(ctx context.Context, playerID int64) ([]models.SubscriptionDetail, error)
	ListAll(ctx context.Context, status string) ([]models.SubscriptionDetail, error)
}

type SubscriptionHandler struct {
	service subscriptionApplicationService
}

func NewSubscriptionHandler(service *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

type purchaseRequest struct {
	PackageID int64  `json:"package_id"`
	Method    string `json:"method"`
}

func (h *SubscriptionHandler) Purchase(c *fiber.Ctx) error {
	playerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.PackageID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "package_id is required"})
	}
	if strings.TrimSpace(req.Method) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "method is required"})
	}

	detail, err := h.service.Purchase(c.Context(), playerID, services.PurchaseInput{
		PackageID: req.PackageID,
		Method:    req.Method,
	})
	if err != nil {
		return mapSubscriptionError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subscription": detail})
}

func (h *SubscriptionHandler) ListMine(c *fiber.Ctx) error {
	playerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	subscriptions, err := h.service.ListForPlayer(c.Context(), playerID)
	if err != nil {
		return mapSubscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"subscriptions": subscriptions})
}

func (h *SubscriptionHandler) ListAll(c *fiber.Ctx) error {
	subscriptions, err := h.service.ListAll(c.Context(), c.Query("status"))
	if err != nil {
		return mapSubscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"subscriptions": subscriptions})
}

func (h *SubscriptionHandler) GetSubscription(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := actorRole(c)

	subscriptionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription id"})
	}

	detail, err := h.service.Get(c.Context(), userID, role, subscriptionID)
	if err != nil {
		return mapSubscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"subscription": detail})
}

func (h *SubscriptionHandler) Activate(c *fiber.Ctx) error {
	subscriptionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription id"})
	}

	sub, err := h.service.Activate(c.Context(), subscriptionID)
	if err != nil {
		return mapSubscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"subscription": sub})
}

func mapSubscriptionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidState):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrStorageDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "File storage is not configured"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process subscription request"})
	}
}
