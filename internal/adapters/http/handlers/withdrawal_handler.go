package handlers

import (
	"errors"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
	"tradepro-network/internal/core/services"
	"tradepro-network/internal/pkg/pagination"
	"tradepro-network/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// WithdrawalHandler handles withdrawal endpoints
type WithdrawalHandler struct {
	withdrawalService *services.WithdrawalService
}

// NewWithdrawalHandler creates a new withdrawal handler
func NewWithdrawalHandler(withdrawalService *services.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalService: withdrawalService}
}

// Submit creates a withdrawal request
// @Summary Submit withdrawal request
// @Description Request a withdrawal; the amount is debited immediately
// @Tags Withdrawals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubmitRequest true "Withdrawal data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /withdrawals [post]
func (h *WithdrawalHandler) Submit(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	withdrawal, err := h.withdrawalService.Submit(c.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Amount must be at least 50 and a payout method is required")
		case errors.Is(err, domain.ErrInsufficientBalance):
			return response.BadRequest(c, "Insufficient balance")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Account is not active")
		default:
			return response.InternalServerError(c, "Failed to submit withdrawal")
		}
	}

	return response.Created(c, "Withdrawal request submitted", fiber.Map{
		"withdrawal": withdrawal.ToResponse(),
	})
}

// History returns the member's own withdrawal history
// @Summary List own withdrawals
// @Tags Withdrawals
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response
// @Router /withdrawals [get]
func (h *WithdrawalHandler) History(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	status := c.Query("status")

	withdrawals, total, err := h.withdrawalService.ListByUser(c.Context(), userID, status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list withdrawals")
	}

	items := make([]models.WithdrawalResponse, 0, len(withdrawals))
	for i := range withdrawals {
		items = append(items, *withdrawals[i].ToResponse())
	}

	return response.Success(c, "Withdrawals retrieved successfully", pagination.NewResponse(items, params, total))
}

// List returns all withdrawals for the admin review queue
// @Summary List all withdrawals (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response
// @Router /admin/withdrawals [get]
func (h *WithdrawalHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	status := c.Query("status")

	withdrawals, total, err := h.withdrawalService.List(c.Context(), status, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list withdrawals")
	}

	items := make([]models.WithdrawalResponse, 0, len(withdrawals))
	for i := range withdrawals {
		items = append(items, *withdrawals[i].ToResponse())
	}

	return response.Success(c, "Withdrawals retrieved successfully", pagination.NewResponse(items, params, total))
}

// Approve marks a pending withdrawal as paid out
// @Summary Approve withdrawal (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Withdrawal ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/withdrawals/{id}/approve [put]
func (h *WithdrawalHandler) Approve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid withdrawal ID")
	}

	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	withdrawal, err := h.withdrawalService.Approve(c.Context(), uint(id), adminID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrWithdrawalNotFound):
			return response.NotFound(c, "Withdrawal not found")
		case errors.Is(err, domain.ErrWithdrawalProcessed):
			return response.Conflict(c, "Withdrawal has already been processed")
		default:
			return response.InternalServerError(c, "Failed to approve withdrawal")
		}
	}

	return response.Success(c, "Withdrawal approved", fiber.Map{
		"withdrawal": withdrawal.ToResponse(),
	})
}

// RejectRequest represents the rejection body
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Reject declines a pending withdrawal and refunds the amount
// @Summary Reject withdrawal (admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Withdrawal ID"
// @Param body body RejectRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/withdrawals/{id}/reject [put]
func (h *WithdrawalHandler) Reject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid withdrawal ID")
	}

	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req RejectRequest
	_ = c.BodyParser(&req)

	withdrawal, err := h.withdrawalService.Reject(c.Context(), uint(id), adminID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "A rejection reason is required")
		case errors.Is(err, domain.ErrWithdrawalNotFound):
			return response.NotFound(c, "Withdrawal not found")
		case errors.Is(err, domain.ErrWithdrawalProcessed):
			return response.Conflict(c, "Withdrawal has already been processed")
		default:
			return response.InternalServerError(c, "Failed to reject withdrawal")
		}
	}

	return response.Success(c, "Withdrawal rejected and refunded", fiber.Map{
		"withdrawal": withdrawal.ToResponse(),
	})
}
