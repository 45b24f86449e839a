package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/core/domain"
)

// MinWithdrawalAmount is the smallest withdrawal a member may request
const MinWithdrawalAmount = 50.0

// WithdrawalService handles the withdrawal ledger. Funds are debited
// optimistically when a request is submitted, so the requested amount can
// never be spent twice; a rejection refunds the full amount.
type WithdrawalService struct {
	withdrawalRepo repositories.WithdrawalRepository
	userRepo       repositories.UserRepository
	txRepo         repositories.TransactionRepository
	notifRepo      repositories.NotificationRepository
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(
	withdrawalRepo repositories.WithdrawalRepository,
	userRepo repositories.UserRepository,
	txRepo repositories.TransactionRepository,
	notifRepo repositories.NotificationRepository,
) *WithdrawalService {
	return &WithdrawalService{
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		txRepo:         txRepo,
		notifRepo:      notifRepo,
	}
}

// SubmitRequest is the payload for a withdrawal request
type SubmitRequest struct {
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
	Details string  `json:"details"`
}

// Submit creates a pending withdrawal and debits the member's balance.
// The debit happens first and is conditional on sufficient funds, so an
// overdraw leaves both the balance and the ledger untouched.
func (s *WithdrawalService) Submit(ctx context.Context, userID uint, req SubmitRequest) (*models.Withdrawal, error) {
	if req.Amount < MinWithdrawalAmount {
		return nil, domain.ErrInvalidInput
	}
	if req.Method == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != string(domain.StatusActive) {
		return nil, domain.ErrForbidden
	}

	if err := s.userRepo.DebitBalance(ctx, user.ID, req.Amount); err != nil {
		return nil, err
	}

	withdrawal := &models.Withdrawal{
		UserID:  user.ID,
		Amount:  req.Amount,
		Method:  req.Method,
		Details: req.Details,
		Status:  string(domain.WithdrawalPending),
	}
	if err := s.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		// Put the money back; the request never made it into the ledger
		if refundErr := s.userRepo.CreditBalance(ctx, user.ID, req.Amount); refundErr != nil {
			log.Printf("❌ Failed to refund %.2f to user %d after ledger error: %v", req.Amount, user.ID, refundErr)
		}
		return nil, err
	}

	tx := &models.Transaction{
		UserID:          user.ID,
		TransactionType: models.TxTypeWithdrawRequest,
		Amount:          -req.Amount,
		Description:     fmt.Sprintf("Withdrawal request #%d via %s", withdrawal.ID, req.Method),
		PerformedBy:     user.ID,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		log.Printf("⚠️ Failed to record withdrawal transaction for user %d: %v", user.ID, err)
	}

	notification := &models.Notification{
		UserID:  user.ID,
		Type:    models.NotifyWithdrawalSubmitted,
		Message: fmt.Sprintf("Your withdrawal request of %.2f has been submitted", req.Amount),
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		log.Printf("⚠️ Failed to notify user %d: %v", user.ID, err)
	}

	return withdrawal, nil
}

// Approve marks a pending withdrawal as paid out. The funds were already
// debited at submit time, so no balance change happens here. Only pending
// requests can be approved.
func (s *WithdrawalService) Approve(ctx context.Context, id, adminID uint) (*models.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal.Status != string(domain.WithdrawalPending) {
		return nil, domain.ErrWithdrawalProcessed
	}

	now := time.Now()
	if err := s.withdrawalRepo.MarkProcessed(ctx, id, string(domain.WithdrawalApproved), nil, adminID, now); err != nil {
		return nil, err
	}
	withdrawal.Status = string(domain.WithdrawalApproved)
	withdrawal.ProcessedAt = &now
	withdrawal.ProcessedBy = &adminID

	notification := &models.Notification{
		UserID:  withdrawal.UserID,
		Type:    models.NotifyWithdrawalApproved,
		Message: fmt.Sprintf("Your withdrawal of %.2f has been approved", withdrawal.Amount),
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		log.Printf("⚠️ Failed to notify user %d: %v", withdrawal.UserID, err)
	}

	return withdrawal, nil
}

// Reject declines a pending withdrawal and refunds the full amount to the
// member's balance. A rejection reason is required. Only pending requests
// can be rejected.
func (s *WithdrawalService) Reject(ctx context.Context, id, adminID uint, reason string) (*models.Withdrawal, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}

	withdrawal, err := s.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal.Status != string(domain.WithdrawalPending) {
		return nil, domain.ErrWithdrawalProcessed
	}

	now := time.Now()
	if err := s.withdrawalRepo.MarkProcessed(ctx, id, string(domain.WithdrawalRejected), &reason, adminID, now); err != nil {
		return nil, err
	}
	withdrawal.Status = string(domain.WithdrawalRejected)
	withdrawal.RejectReason = &reason
	withdrawal.ProcessedAt = &now
	withdrawal.ProcessedBy = &adminID

	if err := s.userRepo.CreditBalance(ctx, withdrawal.UserID, withdrawal.Amount); err != nil {
		log.Printf("❌ Failed to refund %.2f to user %d for rejected withdrawal %d: %v",
			withdrawal.Amount, withdrawal.UserID, id, err)
		return nil, err
	}

	tx := &models.Transaction{
		UserID:          withdrawal.UserID,
		TransactionType: models.TxTypeWithdrawRefund,
		Amount:          withdrawal.Amount,
		Description:     fmt.Sprintf("Refund for rejected withdrawal #%d", id),
		PerformedBy:     adminID,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		log.Printf("⚠️ Failed to record refund transaction for user %d: %v", withdrawal.UserID, err)
	}

	message := fmt.Sprintf("Your withdrawal of %.2f has been rejected and refunded: %s", withdrawal.Amount, reason)
	notification := &models.Notification{
		UserID:  withdrawal.UserID,
		Type:    models.NotifyWithdrawalRejected,
		Message: message,
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		log.Printf("⚠️ Failed to notify user %d: %v", withdrawal.UserID, err)
	}

	return withdrawal, nil
}

// GetByID returns a single withdrawal
func (s *WithdrawalService) GetByID(ctx context.Context, id uint) (*models.Withdrawal, error) {
	return s.withdrawalRepo.FindByID(ctx, id)
}

// ListByUser returns a member's withdrawal history, newest first
func (s *WithdrawalService) ListByUser(ctx context.Context, userID uint, status string, offset, limit int) ([]models.Withdrawal, int64, error) {
	return s.withdrawalRepo.ListByUser(ctx, userID, status, offset, limit)
}

// List returns all withdrawals for the admin review queue
func (s *WithdrawalService) List(ctx context.Context, status string, offset, limit int) ([]models.Withdrawal, int64, error) {
	return s.withdrawalRepo.List(ctx, status, offset, limit)
}
