package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/kmagued/beachamp-training-sub001/internal/models"
	"github.com/kmagued/beachamp-training-sub001/internal/repository"
)

type PackageHandler struct {
	packageRepo *repository.PackageRepository
}

func NewPackageHandler(packageRepo *repository.PackageRepository) *PackageHandler {
	return &PackageHandler{packageRepo: packageRepo}
}

type packageRequest struct {
	Name         string  `json:"name"`
	SessionCount int     `json:"session_count"`
	ValidityDays int     `json:"validity_days"`
	Price        float64 `json:"price"`
	SortOrder    int     `json:"sort_order"`
	IsActive     *bool   `json:"is_active"`
}

func validatePackageRequest(req packageRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.SessionCount <= 0 {
		return "session_count must be greater than 0"
	}
	if req.ValidityDays <= 0 {
		return "validity_days must be greater than 0"
	}
	if req.Price < 0 {
		return "price must not be negative"
	}
	return ""
}

func (h *PackageHandler) ListPackages(c *fiber.Ctx) error {
	role, _ := actorRole(c)
	// Non-admins only see the purchasable catalog.
	activeOnly := role != models.RoleAdmin || c.Query("all") == ""

	packages, err := h.packageRepo.List(c.Context(), activeOnly)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list packages"})
	}
	return c.JSON(fiber.Map{"packages": packages})
}

func (h *PackageHandler) GetPackage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	pkg, err := h.packageRepo.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Package not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch package"})
	}
	return c.JSON(fiber.Map{"package": pkg})
}

func (h *PackageHandler) CreatePackage(c *fiber.Ctx) error {
	var req packageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validatePackageRequest(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	pkg, err := h.packageRepo.Create(c.Context(), repository.CreatePackageInput{
		Name:         strings.TrimSpace(req.Name),
		SessionCount: req.SessionCount,
		ValidityDays: req.ValidityDays,
		Price:        req.Price,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create package"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"package": pkg})
}

func (h *PackageHandler) UpdatePackage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	var req packageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validatePackageRequest(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	pkg, err := h.packageRepo.Update(c.Context(), id, repository.UpdatePackageInput{
		Name:         strings.TrimSpace(req.Name),
		SessionCount: req.SessionCount,
		ValidityDays: req.ValidityDays,
		Price:        req.Price,
		SortOrder:    req.SortOrder,
		IsActive:     isActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Package not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update package"})
	}
	return c.JSON(fiber.Map{"package": pkg})
}

// DeactivatePackage retires a package from the catalog. Packages are never
// hard-deleted; existing subscriptions keep their reference.
func (h *PackageHandler) DeactivatePackage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	pkg, err := h.packageRepo.Deactivate(c.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Package not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate package"})
	}
	return c.JSON(fiber.Map{"package": pkg})
}
