package handlers

import (
	"errors"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
	"tradepro-network/internal/core/services"
	"tradepro-network/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PackageHandler handles package catalog endpoints
type PackageHandler struct {
	packageService *services.PackageService
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(packageService *services.PackageService) *PackageHandler {
	return &PackageHandler{packageService: packageService}
}

// List returns the package catalog
// @Summary List membership packages
// @Tags Packages
// @Produce json
// @Success 200 {object} response.Response
// @Router /packages [get]
func (h *PackageHandler) List(c *fiber.Ctx) error {
	packages, err := h.packageService.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list packages")
	}

	items := make([]models.PackageResponse, 0, len(packages))
	for i := range packages {
		items = append(items, *packages[i].ToResponse())
	}

	return response.Success(c, "Packages retrieved successfully", fiber.Map{
		"packages": items,
	})
}

// UpgradeRequest represents upgrade request body
type UpgradeRequest struct {
	Package string `json:"package"`
}

// Upgrade moves the member to a higher tier
// @Summary Upgrade membership package
// @Description Upgrade to a strictly higher tier; cost is the price difference
// @Tags Packages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpgradeRequest true "Target package code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /packages/upgrade [post]
func (h *PackageHandler) Upgrade(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpgradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Package == "" {
		return response.BadRequest(c, "Target package is required")
	}

	user, err := h.packageService.Upgrade(c.Context(), userID, req.Package)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPackageNotFound):
			return response.BadRequest(c, "Unknown membership package")
		case errors.Is(err, domain.ErrNotAnUpgrade):
			return response.BadRequest(c, "Target package must be a higher tier than the current one")
		case errors.Is(err, domain.ErrInsufficientBalance):
			return response.BadRequest(c, "Insufficient balance for the upgrade")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to upgrade package")
		}
	}

	return response.Success(c, "Package upgraded successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}
