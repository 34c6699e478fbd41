// Package migration creates and updates the database schema at startup.
package migration

import (
	campaigndomain "github.com/carewise/escortcare/internal/campaign/domain"
	catalogdomain "github.com/carewise/escortcare/internal/catalog/domain"
	coupondomain "github.com/carewise/escortcare/internal/coupon/domain"
	escortdomain "github.com/carewise/escortcare/internal/escort/domain"
	membershipdomain "github.com/carewise/escortcare/internal/membership/domain"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	patientdomain "github.com/carewise/escortcare/internal/patient/domain"
	pointsdomain "github.com/carewise/escortcare/internal/points/domain"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	referraldomain "github.com/carewise/escortcare/internal/referral/domain"
	reviewdomain "github.com/carewise/escortcare/internal/review/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every persisted type, in dependency order.
func Models() []any {
	return []any{
		&catalogdomain.Category{},
		&catalogdomain.Service{},
		&campaigndomain.Campaign{},
		&campaigndomain.Participation{},
		&coupondomain.Template{},
		&coupondomain.UserCoupon{},
		&pointsdomain.Balance{},
		&pointsdomain.Record{},
		&membershipdomain.Tier{},
		&membershipdomain.Membership{},
		&escortdomain.Escort{},
		&escortdomain.StatusLog{},
		&patientdomain.Patient{},
		&pricingdomain.Config{},
		&orderdomain.Order{},
		&orderdomain.Snapshot{},
		&reviewdomain.Review{},
		&referraldomain.Binding{},
		&referraldomain.Reward{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Info("schema migrated", zap.Int("models", len(Models())))
	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(Migrate),
)
