// Package seed writes development fixtures: a default pricing configuration
// plus a small catalog and membership ladder for local testing.
package seed

import (
	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/carewise/escortcare/internal/catalog/domain"
	"github.com/carewise/escortcare/internal/config"
	membershipdomain "github.com/carewise/escortcare/internal/membership/domain"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run inserts fixtures when SEED_DEMO_DATA is set. The pricing configuration
// is always ensured so quoting works on a fresh database.
func Run(cfg config.Config, db *gorm.DB, log *zap.Logger, genID *snowflake.Node) error {
	if err := ensurePricingConfig(db, genID); err != nil {
		return err
	}
	if !cfg.SeedDemoData {
		return nil
	}
	if err := seedCatalog(db, genID); err != nil {
		return err
	}
	if err := seedTiers(db, genID); err != nil {
		return err
	}
	log.Info("demo data seeded")
	return nil
}

func ensurePricingConfig(db *gorm.DB, genID *snowflake.Node) error {
	var count int64
	if err := db.Model(&pricingdomain.Config{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	row := pricingdomain.DefaultConfig()
	row.ID = genID.Generate()
	return db.Create(row).Error
}

func seedCatalog(db *gorm.DB, genID *snowflake.Node) error {
	var count int64
	if err := db.Model(&catalogdomain.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	category := &catalogdomain.Category{
		ID:   genID.Generate(),
		Name: "Outpatient Escort",
		Sort: 1,
	}
	if err := db.Create(category).Error; err != nil {
		return err
	}

	services := []catalogdomain.Service{
		{
			ID:          genID.Generate(),
			CategoryID:  category.ID,
			Name:        "Half-day outpatient escort",
			Description: "Accompaniment through registration, consultation, and pickup of results.",
			Price:       decimal.RequireFromString("198.00"),
			Active:      true,
		},
		{
			ID:          genID.Generate(),
			CategoryID:  category.ID,
			Name:        "Full-day outpatient escort",
			Description: "Whole-day accompaniment including queueing and pharmacy.",
			Price:       decimal.RequireFromString("358.00"),
			Active:      true,
		},
		{
			ID:           genID.Generate(),
			CategoryID:   category.ID,
			Name:         "Member hospitalization companion",
			Description:  "Hospitalization day companion, members only.",
			Price:        decimal.RequireFromString("528.00"),
			MemberPolicy: catalogdomain.MemberPolicyExclusive,
			Active:       true,
		},
	}
	return db.Create(&services).Error
}

func seedTiers(db *gorm.DB, genID *snowflake.Node) error {
	var count int64
	if err := db.Model(&membershipdomain.Tier{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tiers := []membershipdomain.Tier{
		{
			ID:              genID.Generate(),
			Name:            "Silver",
			Level:           1,
			DiscountPercent: decimal.RequireFromString("5"),
			SpendThreshold:  decimal.Zero,
		},
		{
			ID:                    genID.Generate(),
			Name:                  "Gold",
			Level:                 2,
			DiscountPercent:       decimal.RequireFromString("10"),
			OvertimeWaiverPercent: decimal.RequireFromString("50"),
			SpendThreshold:        decimal.RequireFromString("2000"),
		},
		{
			ID:                    genID.Generate(),
			Name:                  "Platinum",
			Level:                 3,
			DiscountPercent:       decimal.RequireFromString("15"),
			OvertimeWaiverPercent: decimal.RequireFromString("100"),
			SpendThreshold:        decimal.RequireFromString("8000"),
		},
	}
	return db.Create(&tiers).Error
}

var Module = fx.Module("seed",
	fx.Invoke(Run),
)
