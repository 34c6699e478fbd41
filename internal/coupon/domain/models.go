// Package domain contains issued coupons and the templates they are minted from.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Type string

var (
	TypeAmount  Type = "amount"
	TypePercent Type = "percent"
	TypeFree    Type = "free"
)

type Status string

var (
	StatusUnused Status = "unused"
	StatusUsed   Status = "used"
)

type Scope string

var (
	ScopeAll      Scope = "all"
	ScopeCategory Scope = "category"
	ScopeService  Scope = "service"
)

// GrantTrigger names the completion-time event that mints a coupon from a template.
type GrantTrigger string

var (
	TriggerOrderCompleted GrantTrigger = "order_completed"
	TriggerSpendMilestone GrantTrigger = "spend_milestone"
)

// UserCoupon is a coupon instance issued to one user. Its status moves
// unused -> used exactly once, stamped with the consuming order.
type UserCoupon struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	UserID     snowflake.ID  `json:"user_id" gorm:"not null;index"`
	TemplateID *snowflake.ID `json:"template_id,omitempty" gorm:"index"`
	Name       string        `json:"name" gorm:"type:text;not null"`
	Type       Type          `json:"type" gorm:"type:text;not null"`
	Value      decimal.Decimal `json:"value" gorm:"type:decimal(12,2);not null"`
	PercentCap *decimal.Decimal `json:"percent_cap,omitempty" gorm:"type:decimal(12,2)"`
	MinAmount  decimal.Decimal  `json:"min_amount" gorm:"type:decimal(12,2);not null;default:0"`
	Scope      Scope            `json:"scope" gorm:"type:text;not null;default:'all'"`
	ScopeIDs   datatypes.JSONSlice[int64] `json:"scope_ids,omitempty" gorm:"type:json"`
	MemberOnly bool             `json:"member_only" gorm:"not null;default:false"`
	// StackWithMember permits use alongside a membership discount.
	StackWithMember bool `json:"stack_with_member" gorm:"not null;default:true"`
	// StackInMultiply permits use when the pricing stack mode is multiply.
	StackInMultiply bool          `json:"stack_in_multiply" gorm:"not null;default:true"`
	Status          Status        `json:"status" gorm:"type:text;not null;default:'unused';index"`
	OrderID         *snowflake.ID `json:"order_id,omitempty" gorm:"index"`
	ExpireAt        *time.Time    `json:"expire_at,omitempty"`
	UsedAt          *time.Time    `json:"used_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (UserCoupon) TableName() string { return "user_coupons" }

// Covers reports whether the coupon's scope includes the given service.
func (c *UserCoupon) Covers(serviceID, categoryID snowflake.ID) bool {
	switch c.Scope {
	case ScopeAll:
		return true
	case ScopeCategory:
		return containsID(c.ScopeIDs, categoryID)
	case ScopeService:
		return containsID(c.ScopeIDs, serviceID)
	default:
		return false
	}
}

// Expired reports whether the coupon has an expiry in the past.
func (c *UserCoupon) Expired(now time.Time) bool {
	return c.ExpireAt != nil && !now.Before(*c.ExpireAt)
}

func containsID(ids []int64, id snowflake.ID) bool {
	for _, v := range ids {
		if v == id.Int64() {
			return true
		}
	}
	return false
}

// Template describes coupons granted automatically on completion triggers.
type Template struct {
	ID             snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"type:text;not null"`
	// Stored as grant_trigger; "trigger" is a reserved word in SQL.
	Trigger        GrantTrigger    `json:"trigger" gorm:"column:grant_trigger;type:text;not null;index"`
	SpendThreshold decimal.Decimal `json:"spend_threshold" gorm:"type:decimal(12,2);not null;default:0"`
	Type           Type            `json:"type" gorm:"type:text;not null"`
	Value          decimal.Decimal `json:"value" gorm:"type:decimal(12,2);not null"`
	PercentCap     *decimal.Decimal `json:"percent_cap,omitempty" gorm:"type:decimal(12,2)"`
	MinAmount      decimal.Decimal  `json:"min_amount" gorm:"type:decimal(12,2);not null;default:0"`
	Scope          Scope            `json:"scope" gorm:"type:text;not null;default:'all'"`
	ScopeIDs       datatypes.JSONSlice[int64] `json:"scope_ids,omitempty" gorm:"type:json"`
	ValidDays      int              `json:"valid_days" gorm:"not null;default:30"`
	Active         bool             `json:"active" gorm:"not null;default:true"`
	CreatedAt      time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Template) TableName() string { return "coupon_templates" }
