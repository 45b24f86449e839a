package config

import (
	"log"

	"gorm.io/gorm"

	"tradepro-network/internal/adapters/persistence/models"
)

// SeedMasterData populates the package catalog.
// Idempotent: each package is inserted only if its code is absent.
func SeedMasterData(db *gorm.DB) error {
	log.Println("🌱 Seeding master data...")

	if err := seedPackages(db); err != nil {
		return err
	}

	log.Println("✅ Master data seeding completed")
	return nil
}

// seedPackages seeds the membership package catalog
func seedPackages(db *gorm.DB) error {
	packages := []models.Package{
		{
			Code:      "basic",
			Name:      "Basic",
			Price:     100,
			Color:     "#6B7280",
			Icon:      "star",
			SortOrder: 1,
		},
		{
			Code:      "silver",
			Name:      "Silver",
			Price:     500,
			Color:     "#9CA3AF",
			Icon:      "award",
			SortOrder: 2,
		},
		{
			Code:      "gold",
			Name:      "Gold",
			Price:     1000,
			Color:     "#F59E0B",
			Icon:      "trophy",
			SortOrder: 3,
		},
		{
			Code:      "platinum",
			Name:      "Platinum",
			Price:     2500,
			Color:     "#8B5CF6",
			Icon:      "gem",
			SortOrder: 4,
		},
		{
			Code:      "diamond",
			Name:      "Diamond",
			Price:     5000,
			Color:     "#3B82F6",
			Icon:      "diamond",
			SortOrder: 5,
		},
	}

	features := map[string][]string{
		"basic":    {"Direct referral commission 10%", "Member dashboard", "Referral link"},
		"silver":   {"Direct referral commission 10%", "Level bonus", "Member dashboard", "Referral link"},
		"gold":     {"Direct referral commission 10%", "Level bonus", "Matching bonus 2%", "Priority support"},
		"platinum": {"Direct referral commission 10%", "Level bonus", "Matching bonus 2%", "Leadership bonus", "Priority support"},
		"diamond":  {"Direct referral commission 10%", "Level bonus", "Matching bonus 2%", "Leadership bonus", "Dedicated account manager"},
	}

	for _, pkg := range packages {
		var count int64
		db.Model(&models.Package{}).Where("code = ?", pkg.Code).Count(&count)
		if count > 0 {
			continue
		}

		pkg.SetFeatureList(features[pkg.Code])

		if err := db.Create(&pkg).Error; err != nil {
			log.Printf("❌ Failed to seed package %s: %v", pkg.Code, err)
			return err
		}
		log.Printf("   ✓ Package seeded: %s (%.0f)", pkg.Name, pkg.Price)
	}

	return nil
}
