// Package domain contains orders, their immutable price snapshots, and the
// order status state machine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

var (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusConfirmed  Status = "confirmed"
	StatusAssigned   Status = "assigned"
	StatusArrived    Status = "arrived"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusPaid, StatusAssigned, StatusCancelled},
	StatusPaid:       {StatusConfirmed, StatusAssigned, StatusCancelled},
	StatusConfirmed:  {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusArrived, StatusCancelled},
	StatusArrived:    {StatusInProgress},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reports whether the state machine permits moving to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether a user-initiated cancellation is legal. Only
// orders nobody has started working yet can be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusPaid || s == StatusConfirmed
}

// BlocksSlot reports whether an order in this status occupies its escort's
// time slot.
func (s Status) BlocksSlot() bool {
	return s == StatusAssigned || s == StatusArrived || s == StatusInProgress
}

type Order struct {
	ID         snowflake.ID   `json:"id" gorm:"primaryKey"`
	OrderNo    string         `json:"order_no" gorm:"type:text;not null;uniqueIndex"`
	UserID     snowflake.ID   `json:"user_id" gorm:"not null;index"`
	PatientID  snowflake.ID   `json:"patient_id" gorm:"not null"`
	ServiceID  snowflake.ID   `json:"service_id" gorm:"not null;index"`
	EscortID   *snowflake.ID  `json:"escort_id,omitempty" gorm:"index"`
	HospitalID snowflake.ID   `json:"hospital_id" gorm:"not null"`
	VisitDate  datatypes.Date `json:"visit_date" gorm:"not null"`
	TimeSlot   string         `json:"time_slot" gorm:"type:text;not null"`
	Quantity   int64          `json:"quantity" gorm:"not null;default:1"`

	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);not null"`
	PaidAmount     decimal.Decimal `json:"paid_amount" gorm:"type:decimal(12,2);not null"`

	CouponID   *snowflake.ID `json:"coupon_id,omitempty"`
	CampaignID *snowflake.ID `json:"campaign_id,omitempty"`
	PointsUsed int64         `json:"points_used" gorm:"not null;default:0"`

	Status        Status            `json:"status" gorm:"type:text;not null;default:'pending';index"`
	TransactionID *string           `json:"transaction_id,omitempty" gorm:"type:text"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:json"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

// Snapshot freezes the full price breakdown at order-creation time. Config,
// campaigns, and coupons all drift afterwards; the snapshot does not.
type Snapshot struct {
	ID      snowflake.ID `json:"id" gorm:"primaryKey"`
	OrderID snowflake.ID `json:"order_id" gorm:"not null;uniqueIndex"`

	ServiceID snowflake.ID    `json:"service_id" gorm:"not null"`
	Quantity  int64           `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	StackMode string          `json:"stack_mode" gorm:"type:text;not null"`

	OriginalPrice      decimal.Decimal `json:"original_price" gorm:"type:decimal(12,2);not null"`
	CampaignID         *snowflake.ID   `json:"campaign_id,omitempty"`
	CampaignDiscount   decimal.Decimal `json:"campaign_discount" gorm:"type:decimal(12,2);not null;default:0"`
	PriceAfterCampaign decimal.Decimal `json:"price_after_campaign" gorm:"type:decimal(12,2);not null"`
	MemberDiscount     decimal.Decimal `json:"member_discount" gorm:"type:decimal(12,2);not null;default:0"`
	PriceAfterMember   decimal.Decimal `json:"price_after_member" gorm:"type:decimal(12,2);not null"`
	CouponID           *snowflake.ID   `json:"coupon_id,omitempty"`
	CouponDiscount     decimal.Decimal `json:"coupon_discount" gorm:"type:decimal(12,2);not null;default:0"`
	PriceAfterCoupon   decimal.Decimal `json:"price_after_coupon" gorm:"type:decimal(12,2);not null"`
	PointsUsed         int64           `json:"points_used" gorm:"not null;default:0"`
	PointsDiscount     decimal.Decimal `json:"points_discount" gorm:"type:decimal(12,2);not null;default:0"`
	PriceAfterPoints   decimal.Decimal `json:"price_after_points" gorm:"type:decimal(12,2);not null"`
	FinalPrice         decimal.Decimal `json:"final_price" gorm:"type:decimal(12,2);not null"`
	TotalDiscount      decimal.Decimal `json:"total_discount" gorm:"type:decimal(12,2);not null"`

	OvertimeWaiverPercent decimal.Decimal `json:"overtime_waiver_percent" gorm:"type:decimal(5,2);not null;default:0"`
	ComputedAt            time.Time       `json:"computed_at" gorm:"not null"`
	CreatedAt             time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Snapshot) TableName() string { return "order_price_snapshots" }
