package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"tradepro-network/internal/adapters/persistence/repositories"
	"tradepro-network/internal/core/domain"
)

// notificationRetention is how long read notifications are kept
const notificationRetention = 90 * 24 * time.Hour

// CronService runs the nightly maintenance jobs: counter reconciliation,
// earnings re-sync, expired token purge and notification cleanup.
type CronService struct {
	cron      *cron.Cron
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	notifRepo repositories.NotificationRepository
	referral  *ReferralService
	earnings  *EarningsService
}

// NewCronService creates a new cron service
func NewCronService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	notifRepo repositories.NotificationRepository,
	referral *ReferralService,
	earnings *EarningsService,
) *CronService {
	return &CronService{
		cron:      cron.New(),
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		notifRepo: notifRepo,
		referral:  referral,
		earnings:  earnings,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	// Nightly at 03:00: repair counters, then re-sync earnings
	if _, err := s.cron.AddFunc("0 3 * * *", s.runNightlyMaintenance); err != nil {
		return err
	}

	// Hourly: purge expired refresh tokens
	if _, err := s.cron.AddFunc("0 * * * *", s.runTokenPurge); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cron scheduler started (nightly maintenance 03:00, hourly token purge)")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron scheduler stopped")
}

func (s *CronService) runNightlyMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	log.Println("🌙 Nightly maintenance started")

	repaired, err := s.referral.ReconcileCounters(ctx)
	if err != nil {
		log.Printf("❌ Counter reconciliation failed: %v", err)
	} else if repaired > 0 {
		log.Printf("✅ Counter reconciliation repaired %d users", repaired)
	}

	if err := s.syncAllEarnings(ctx); err != nil {
		log.Printf("❌ Earnings sync failed: %v", err)
	}

	deleted, err := s.notifRepo.DeleteOlderThan(ctx, time.Now().Add(-notificationRetention))
	if err != nil {
		log.Printf("❌ Notification cleanup failed: %v", err)
	} else if deleted > 0 {
		log.Printf("✅ Removed %d old notifications", deleted)
	}

	log.Println("🌙 Nightly maintenance finished")
}

// syncAllEarnings re-syncs every member's earnings page by page
func (s *CronService) syncAllEarnings(ctx context.Context) error {
	const pageSize = 200

	for offset := 0; ; offset += pageSize {
		users, total, err := s.userRepo.List(ctx, repositories.UserFilter{Role: string(domain.RoleUser)}, offset, pageSize)
		if err != nil {
			return err
		}

		for i := range users {
			if _, err := s.earnings.Sync(ctx, users[i].ID); err != nil {
				log.Printf("⚠️ Earnings sync failed for user %d: %v", users[i].ID, err)
			}
		}

		if int64(offset+pageSize) >= total {
			return nil
		}
	}
}

func (s *CronService) runTokenPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := s.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Token purge failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("✅ Purged %d expired refresh tokens", deleted)
	}
}
