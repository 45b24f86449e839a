package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/core/domain"
	"tradepro-network/internal/pkg/password"
)

// UserService handles member profiles and the admin user directory
type UserService struct {
	userRepo  repositories.UserRepository
	pkgRepo   repositories.PackageRepository
	txRepo    repositories.TransactionRepository
	tokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	pkgRepo repositories.PackageRepository,
	txRepo repositories.TransactionRepository,
	tokenRepo repositories.RefreshTokenRepository,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		pkgRepo:   pkgRepo,
		txRepo:    txRepo,
		tokenRepo: tokenRepo,
	}
}

// GetByID returns a single user with package preloaded
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// List returns a filtered page of users for the admin directory
func (s *UserService) List(ctx context.Context, filter repositories.UserFilter, offset, limit int) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, filter, offset, limit)
}

// UpdateProfileRequest is the payload for self-service profile edits
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
}

// UpdateProfile lets a member edit their own name, email and mobile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.FullName); name != "" {
		user.FullName = name
	}
	if err := s.applyEmailChange(ctx, user, req.Email); err != nil {
		return nil, err
	}
	if mobile := strings.TrimSpace(req.Mobile); mobile != "" {
		user.Mobile = mobile
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// applyEmailChange sets a new email after checking it is not taken.
// An empty or unchanged email is a no-op.
func (s *UserService) applyEmailChange(ctx context.Context, user *models.User, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || email == user.Email {
		return nil
	}

	taken, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrUserAlreadyExists
	}

	user.Email = email
	return nil
}

// ChangePassword verifies the old password before setting the new one and
// revokes every session the member holds.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(oldPassword, user.Password) {
		return domain.ErrInvalidCredentials
	}
	if !password.ValidatePassword(newPassword) {
		return domain.ErrInvalidPassword
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	return s.tokenRepo.RevokeAllByUser(ctx, userID)
}

// AdminUpdateRequest is the payload for admin edits to a user
type AdminUpdateRequest struct {
	FullName      string   `json:"full_name"`
	Email         string   `json:"email"`
	Mobile        string   `json:"mobile"`
	Status        string   `json:"status"`
	PackageCode   string   `json:"package"`
	BalanceAdjust *float64 `json:"balance_adjust"`
	AdjustReason  string   `json:"adjust_reason"`
}

// AdminUpdate applies admin edits to a user. A balance adjustment is
// recorded in the transaction ledger with the acting admin as performer.
func (s *UserService) AdminUpdate(ctx context.Context, id, adminID uint, req AdminUpdateRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.FullName); name != "" {
		user.FullName = name
	}
	if err := s.applyEmailChange(ctx, user, req.Email); err != nil {
		return nil, err
	}
	if mobile := strings.TrimSpace(req.Mobile); mobile != "" {
		user.Mobile = mobile
	}
	if req.Status != "" {
		switch domain.UserStatus(req.Status) {
		case domain.StatusActive, domain.StatusInactive, domain.StatusSuspended:
			user.Status = req.Status
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if req.PackageCode != "" {
		pkg, err := s.pkgRepo.FindByCode(ctx, strings.ToLower(req.PackageCode))
		if err != nil {
			return nil, err
		}
		user.PackageID = &pkg.ID
		user.Package = pkg
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if req.BalanceAdjust != nil && *req.BalanceAdjust != 0 {
		amount := *req.BalanceAdjust
		if amount < 0 {
			if err := s.userRepo.DebitBalance(ctx, user.ID, -amount); err != nil {
				return nil, err
			}
		} else {
			if err := s.userRepo.CreditBalance(ctx, user.ID, amount); err != nil {
				return nil, err
			}
		}
		user.Balance += amount

		reason := req.AdjustReason
		if reason == "" {
			reason = "Manual balance adjustment"
		}
		tx := &models.Transaction{
			UserID:          user.ID,
			TransactionType: models.TxTypeAdminAdjust,
			Amount:          amount,
			Description:     reason,
			PerformedBy:     adminID,
		}
		if err := s.txRepo.Create(ctx, tx); err != nil {
			log.Printf("⚠️ Failed to record balance adjustment for user %d: %v", user.ID, err)
		}
	}

	// Suspending a user kills their sessions
	if user.Status != string(domain.StatusActive) {
		if err := s.tokenRepo.RevokeAllByUser(ctx, user.ID); err != nil {
			log.Printf("⚠️ Failed to revoke sessions for user %d: %v", user.ID, err)
		}
	}

	return user, nil
}

// Delete removes a user. Their direct referrals are detached and become
// roots of their own trees; counters are repaired by the nightly
// reconciliation.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == string(domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	detached, err := s.userRepo.DetachChildren(ctx, id)
	if err != nil {
		return err
	}
	if detached > 0 {
		log.Printf("⚠️ Detached %d referrals of deleted user %d; they are now tree roots", detached, id)
	}

	if user.ReferrerID != nil {
		if err := s.userRepo.IncrementDirectReferrals(ctx, *user.ReferrerID, -1); err != nil {
			log.Printf("⚠️ Failed to decrement direct count of referrer %d: %v", *user.ReferrerID, err)
		}
	}

	if err := s.tokenRepo.RevokeAllByUser(ctx, id); err != nil {
		log.Printf("⚠️ Failed to revoke sessions for deleted user %d: %v", id, err)
	}

	return s.userRepo.Delete(ctx, id)
}

// Transactions returns a member's ledger history, newest first
func (s *UserService) Transactions(ctx context.Context, userID uint, txType string, offset, limit int) ([]models.Transaction, int64, error) {
	return s.txRepo.ListByUser(ctx, userID, txType, offset, limit)
}

// ResetPassword sets a new password for a user without the old one.
// Admin only; all sessions are revoked.
func (s *UserService) ResetPassword(ctx context.Context, id uint, newPassword string) error {
	if !password.ValidatePassword(newPassword) {
		return domain.ErrInvalidPassword
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	return s.tokenRepo.RevokeAllByUser(ctx, id)
}
