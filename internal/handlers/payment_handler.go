package handlers

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/repository"
	"github.com/kmagued/beachamp-training-sub001/internal/services"
)

type paymentApplicationService interface {
	ConfirmPayment(ctx context.Context, reviewerID, paymentID int64) (*models.SubscriptionDetail, error)
	RejectPayment(ctx context.Context, reviewerID, paymentID int64, reason string) (*models.SubscriptionDetail, error)
	AttachScreenshot(ctx context.Context, actorID int64, role string, paymentID int64, file multipart.File, filename string) (*models.Payment, error)
}

type PaymentHandler struct {
	service     paymentApplicationService
	paymentRepo *repository.PaymentRepository
}

func NewPaymentHandler(service *services.SubscriptionService, paymentRepo *repository.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{service: service, paymentRepo: paymentRepo}
}

type rejectPaymentRequest struct {
	Reason string `json:"reason"`
}

func (h *PaymentHandler) ConfirmPayment(c *fiber.Ctx) error {
	reviewerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	detail, err := h.service.ConfirmPayment(c.Context(), reviewerID, paymentID)
	if err != nil {
		return mapSubscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"subscription": detail})
}

func (h *PaymentHandler) RejectPayment(c *fiber.Ctx) error {
	reviewerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	var req rejectPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Reason) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reason is required"})
	}

	detail, err := h.service.RejectPayment(c.Context(), reviewerID, paymentID, req.Reason)
	if err != nil {
		return mapSubscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"subscription": detail})
}

func (h *PaymentHandler) UploadScreenshot(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := actorRole(c)

	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment id"})
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "screenshot file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read screenshot"})
	}
	defer file.Close()

	payment, err := h.service.AttachScreenshot(c.Context(), userID, role, paymentID, file, fileHeader.Filename)
	if err != nil {
		return mapSubscriptionError(c, err)
	}
	return c.JSON(fiber.Map{"payment": payment})
}

func (h *PaymentHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.paymentRepo.ListByStatus(c.Context(), strings.TrimSpace(c.Query("status")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list payments"})
	}
	return c.JSON(fiber.Map{"payments": payments})
}
