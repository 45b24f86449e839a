package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/config"
	"tradepro-network/internal/core/domain"
	"tradepro-network/internal/pkg/jwt"
	"tradepro-network/internal/pkg/password"
)

// maxReferralDepth bounds the ancestor walk when propagating team size.
// A well-formed tree never gets near it; it only guards against a
// corrupted referrer chain looping forever.
const maxReferralDepth = 100

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo  repositories.UserRepository
	pkgRepo   repositories.PackageRepository
	tokenRepo repositories.RefreshTokenRepository
	txRepo    repositories.TransactionRepository
	notifRepo repositories.NotificationRepository
	earnings  *EarningsService
	jwtCfg    config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	pkgRepo repositories.PackageRepository,
	tokenRepo repositories.RefreshTokenRepository,
	txRepo repositories.TransactionRepository,
	notifRepo repositories.NotificationRepository,
	earnings *EarningsService,
	jwtCfg config.JWTConfig,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		pkgRepo:   pkgRepo,
		tokenRepo: tokenRepo,
		txRepo:    txRepo,
		notifRepo: notifRepo,
		earnings:  earnings,
		jwtCfg:    jwtCfg,
	}
}

// RegisterRequest is the payload for member registration
type RegisterRequest struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	Password     string `json:"password"`
	PackageCode  string `json:"package"`
	ReferralCode string `json:"referral_code"`
}

// Register creates a new member account. When a referral code is given the
// new member is attached under the referrer, the referrer's direct count and
// every ancestor's team size are incremented, and the referrer's earnings
// are re-synced so the direct commission lands immediately.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, *domain.TokenPair, error) {
	user, err := s.CreateAccount(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// CreateAccount creates a member account without opening a session.
// Registration wraps it with token issuance; the admin directory uses it
// directly to add members.
func (s *AuthService) CreateAccount(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if req.FullName == "" || req.Email == "" {
		return nil, domain.ErrInvalidInput
	}
	if !password.ValidatePassword(req.Password) {
		return nil, domain.ErrInvalidPassword
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// Resolve referrer before creating anything
	var referrer *models.User
	if req.ReferralCode != "" {
		referrer, err = s.userRepo.FindByReferralCode(ctx, strings.TrimSpace(req.ReferralCode))
		if err != nil {
			if err == domain.ErrUserNotFound {
				return nil, domain.ErrReferrerNotFound
			}
			return nil, err
		}
	}

	// Resolve the chosen membership package
	var pkg *models.Package
	if req.PackageCode != "" {
		pkg, err = s.pkgRepo.FindByCode(ctx, strings.ToLower(req.PackageCode))
		if err != nil {
			return nil, err
		}
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	code, err := s.generateReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ReferralCode: code,
		FullName:     req.FullName,
		Email:        req.Email,
		Mobile:       strings.TrimSpace(req.Mobile),
		Password:     hashed,
		Role:         string(domain.RoleUser),
		Status:       string(domain.StatusActive),
	}
	if pkg != nil {
		user.PackageID = &pkg.ID
		user.Package = pkg
	}
	if referrer != nil {
		user.ReferrerID = &referrer.ID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Ledger entry for the buy-in
	if pkg != nil {
		tx := &models.Transaction{
			UserID:          user.ID,
			TransactionType: models.TxTypeRegister,
			Amount:          pkg.Price,
			Description:     fmt.Sprintf("Joined with %s package", pkg.Name),
			PerformedBy:     user.ID,
		}
		if err := s.txRepo.Create(ctx, tx); err != nil {
			log.Printf("⚠️ Failed to record registration transaction for user %d: %v", user.ID, err)
		}
	}

	if referrer != nil {
		if err := s.attachReferral(ctx, referrer, user); err != nil {
			log.Printf("⚠️ Failed to propagate referral counters for user %d: %v", user.ID, err)
		}
	}

	return user, nil
}

// attachReferral updates the upline after a successful registration
func (s *AuthService) attachReferral(ctx context.Context, referrer, joined *models.User) error {
	if err := s.userRepo.IncrementDirectReferrals(ctx, referrer.ID, 1); err != nil {
		return err
	}

	// Every ancestor gains one team member, the referrer included
	ancestors := []uint{referrer.ID}
	current := referrer
	for depth := 0; current.ReferrerID != nil && depth < maxReferralDepth; depth++ {
		parent, err := s.userRepo.FindByID(ctx, *current.ReferrerID)
		if err != nil {
			break
		}
		ancestors = append(ancestors, parent.ID)
		current = parent
	}
	if err := s.userRepo.IncrementTeamSize(ctx, ancestors, 1); err != nil {
		return err
	}

	notification := &models.Notification{
		UserID:  referrer.ID,
		Type:    models.NotifyReferralJoined,
		Message: fmt.Sprintf("%s joined your network using your referral link", joined.FullName),
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		log.Printf("⚠️ Failed to notify referrer %d: %v", referrer.ID, err)
	}

	// Credit the referrer's commission right away
	if s.earnings != nil {
		if _, err := s.earnings.Sync(ctx, referrer.ID); err != nil {
			return err
		}
	}
	return nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*models.User, *domain.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !password.Verify(plainPassword, user.Password) {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if user.Status != string(domain.StatusActive) {
		return nil, nil, domain.ErrForbidden
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. A revoked or expired token is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.jwtCfg.RefreshSecret)
	if err != nil {
		return nil, err
	}

	stored, err := s.tokenRepo.FindByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if stored.IsRevoked() || stored.IsExpired() {
		return nil, domain.ErrTokenInvalid
	}
	if stored.UserID != claims.UserID {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.Status != string(domain.StatusActive) {
		return nil, domain.ErrForbidden
	}

	if err := s.tokenRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	stored, err := s.tokenRepo.FindByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		// Unknown token: nothing to revoke
		return nil
	}

	return s.tokenRepo.Revoke(ctx, stored.ID)
}

// LogoutAll revokes every refresh token a user holds
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	return s.tokenRepo.RevokeAllByUser(ctx, userID)
}

// issueTokens generates an access/refresh pair and persists the refresh hash
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID, user.ReferralCode, user.Email, user.Role,
		s.jwtCfg.Secret, s.jwtCfg.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.NewString()
	refreshToken, err := jwt.GenerateRefreshToken(user.ID, tokenID, s.jwtCfg.RefreshSecret, s.jwtCfg.RefreshTokenDays)
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.jwtCfg.RefreshTokenDays),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// generateReferralCode produces a unique short code like TPA1B2C3
func (s *AuthService) generateReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		raw := strings.ReplaceAll(uuid.NewString(), "-", "")
		code := "TP" + strings.ToUpper(raw[:6])

		taken, err := s.userRepo.ExistsByReferralCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique referral code")
}
