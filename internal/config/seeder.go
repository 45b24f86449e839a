package config

import (
	"log"

	"gorm.io/gorm"

	"tradepro-network/internal/adapters/persistence/models"
	"tradepro-network/internal/core/domain"
	"tradepro-network/internal/pkg/password"
)

// SeedInitialData creates the initial admin account and, in development
// mode, a small demo referral network for manual testing.
func SeedInitialData(db *gorm.DB, cfg *Config) error {
	log.Println("🌱 Seeding initial data...")

	if err := seedAdmin(db); err != nil {
		return err
	}

	if cfg.IsDev() {
		if err := seedDemoUsers(db); err != nil {
			return err
		}
	}

	log.Println("✅ Initial data seeding completed")
	return nil
}

// seedAdmin creates the default admin user if none exists
func seedAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash("Admin@123")
	if err != nil {
		return err
	}

	admin := models.User{
		ReferralCode: "TPADMIN",
		FullName:     "System Administrator",
		Email:        "admin@tradepro.network",
		Mobile:       "0000000000",
		Password:     hashed,
		Role:         string(domain.RoleAdmin),
		Status:       string(domain.StatusActive),
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Printf("❌ Failed to seed admin user: %v", err)
		return err
	}

	log.Println("   ✓ Admin user seeded: admin@tradepro.network")
	return nil
}

// seedDemoUsers creates a three-level demo referral chain (dev only)
func seedDemoUsers(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleUser).Count(&count)
	if count > 0 {
		return nil
	}

	var gold, basic models.Package
	if err := db.Where("code = ?", "gold").First(&gold).Error; err != nil {
		return err
	}
	if err := db.Where("code = ?", "basic").First(&basic).Error; err != nil {
		return err
	}

	hashed, err := password.Hash("Demo@123")
	if err != nil {
		return err
	}

	root := models.User{
		ReferralCode:    "TPDEMO01",
		FullName:        "Demo Leader",
		Email:           "leader@tradepro.network",
		Mobile:          "0810000001",
		Password:        hashed,
		Role:            string(domain.RoleUser),
		PackageID:       &gold.ID,
		Status:          string(domain.StatusActive),
		DirectReferrals: 2,
		TeamSize:        2,
	}
	if err := db.Create(&root).Error; err != nil {
		return err
	}

	children := []models.User{
		{
			ReferralCode: "TPDEMO02",
			FullName:     "Demo Member One",
			Email:        "member1@tradepro.network",
			Mobile:       "0810000002",
			Password:     hashed,
			Role:         string(domain.RoleUser),
			PackageID:    &basic.ID,
			ReferrerID:   &root.ID,
			Status:       string(domain.StatusActive),
		},
		{
			ReferralCode: "TPDEMO03",
			FullName:     "Demo Member Two",
			Email:        "member2@tradepro.network",
			Mobile:       "0810000003",
			Password:     hashed,
			Role:         string(domain.RoleUser),
			PackageID:    &basic.ID,
			ReferrerID:   &root.ID,
			Status:       string(domain.StatusActive),
		},
	}
	for i := range children {
		if err := db.Create(&children[i]).Error; err != nil {
			return err
		}
	}

	log.Println("   ✓ Demo referral network seeded (3 users)")
	return nil
}
