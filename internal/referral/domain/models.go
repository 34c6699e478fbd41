// Package domain contains referral bindings and the rewards minted when an
// invited user completes their first order.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RewardStatus string

var (
	RewardPending RewardStatus = "pending"
	RewardSettled RewardStatus = "settled"
)

// Binding links an invitee to the user who referred them.
type Binding struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	InviterID snowflake.ID `json:"inviter_id" gorm:"not null;index"`
	InviteeID snowflake.ID `json:"invitee_id" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Binding) TableName() string { return "referral_bindings" }

// Reward is minted at most once per invitee, on their first completed order.
type Reward struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	InviterID snowflake.ID    `json:"inviter_id" gorm:"not null;index"`
	InviteeID snowflake.ID    `json:"invitee_id" gorm:"not null;uniqueIndex"`
	OrderID   snowflake.ID    `json:"order_id" gorm:"not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status    RewardStatus    `json:"status" gorm:"type:text;not null;default:'pending'"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Reward) TableName() string { return "referral_rewards" }

// Service reacts to an invitee's first completed order.
type Service interface {
	OnFirstCompletedOrder(ctx context.Context, inviteeID, orderID snowflake.ID) error
}

type Repository interface {
	FindBindingByInvitee(ctx context.Context, db *gorm.DB, inviteeID snowflake.ID) (*Binding, error)
	InsertReward(ctx context.Context, db *gorm.DB, reward *Reward) error
}
