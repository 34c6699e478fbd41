// Package domain contains the escort-service catalog consumed by pricing
// and order creation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MemberPolicy controls how a service interacts with memberships.
type MemberPolicy string

var (
	// MemberPolicyNone prices the service normally; members still get their
	// tier discount.
	MemberPolicyNone MemberPolicy = "none"
	// MemberPolicyExclusive makes the service purchasable only by active members.
	MemberPolicyExclusive MemberPolicy = "exclusive"
	// MemberPolicyFixed opts the service out of membership discounts entirely.
	MemberPolicyFixed MemberPolicy = "fixed"
)

type Category struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Sort      int          `json:"sort" gorm:"not null;default:0"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Category) TableName() string { return "service_categories" }

type Service struct {
	ID                     snowflake.ID     `json:"id" gorm:"primaryKey"`
	CategoryID             snowflake.ID     `json:"category_id" gorm:"not null;index"`
	Name                   string           `json:"name" gorm:"type:text;not null"`
	Description            string           `json:"description,omitempty" gorm:"type:text"`
	Price                  decimal.Decimal  `json:"price" gorm:"type:decimal(12,2);not null"`
	MemberPolicy           MemberPolicy     `json:"member_policy" gorm:"type:text;not null;default:'none'"`
	MemberDiscountOverride *decimal.Decimal `json:"member_discount_override,omitempty" gorm:"type:decimal(5,2)"`
	OvertimeWaiverOverride *decimal.Decimal `json:"overtime_waiver_override,omitempty" gorm:"type:decimal(5,2)"`
	OrderCount             int64            `json:"order_count" gorm:"not null;default:0"`
	Active                 bool             `json:"active" gorm:"not null;default:true"`
	CreatedAt              time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Service) TableName() string { return "services" }
