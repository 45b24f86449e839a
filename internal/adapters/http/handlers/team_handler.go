package handlers

import (
	"errors"
	"strconv"

	"tradepro-network/internal/core/domain"
	"tradepro-network/internal/core/services"
	"tradepro-network/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TeamHandler handles referral tree and earnings endpoints
type TeamHandler struct {
	referralService *services.ReferralService
	earningsService *services.EarningsService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(referralService *services.ReferralService, earningsService *services.EarningsService) *TeamHandler {
	return &TeamHandler{
		referralService: referralService,
		earningsService: earningsService,
	}
}

// treeDepth parses the depth query, clamped to [1, MaxTreeDepth]
func treeDepth(c *fiber.Ctx) int {
	depth, err := strconv.Atoi(c.Query("depth", strconv.Itoa(domain.DefaultTreeDepth)))
	if err != nil || depth < 1 {
		return domain.DefaultTreeDepth
	}
	if depth > domain.MaxTreeDepth {
		return domain.MaxTreeDepth
	}
	return depth
}

// Tree returns the member's own referral tree
// @Summary Get own referral tree
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param depth query int false "Tree depth (1-6, default 3)"
// @Success 200 {object} response.Response
// @Router /team/tree [get]
func (h *TeamHandler) Tree(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	tree, err := h.referralService.BuildTree(c.Context(), userID, treeDepth(c))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to build referral tree")
	}

	return response.Success(c, "Referral tree retrieved successfully", fiber.Map{
		"tree": tree,
	})
}

// Earnings returns the member's own commission breakdown
// @Summary Get own earnings breakdown
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /team/earnings [get]
func (h *TeamHandler) Earnings(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	breakdown, err := h.earningsService.Calculate(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to calculate earnings")
	}

	return response.Success(c, "Earnings retrieved successfully", fiber.Map{
		"earnings": breakdown,
	})
}

// UserTree returns any member's referral tree (admin)
// @Summary Get a user's referral tree (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param depth query int false "Tree depth (1-6, default 3)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/tree [get]
func (h *TeamHandler) UserTree(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	tree, err := h.referralService.BuildTree(c.Context(), uint(id), treeDepth(c))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to build referral tree")
	}

	return response.Success(c, "Referral tree retrieved successfully", fiber.Map{
		"tree": tree,
	})
}

// UserEarnings returns any member's commission breakdown (admin)
// @Summary Get a user's earnings breakdown (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/earnings [get]
func (h *TeamHandler) UserEarnings(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user ID")
	}

	breakdown, err := h.earningsService.Calculate(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to calculate earnings")
	}

	return response.Success(c, "Earnings retrieved successfully", fiber.Map{
		"earnings": breakdown,
	})
}
