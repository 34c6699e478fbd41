// Package domain contains escorts, their public reputation fields, and the
// order-status audit trail.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// DefaultRating is the public rating of an escort with no review history.
	DefaultRating = 5.0
	// RatingFloor and RatingCeil bound the public rating scale.
	RatingFloor = 3.0
	RatingCeil  = 5.0
)

type Escort struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	Name            string       `json:"name" gorm:"type:text;not null"`
	Phone           string       `json:"phone,omitempty" gorm:"type:text"`
	HospitalID      snowflake.ID `json:"hospital_id" gorm:"not null;index"`
	Active          bool         `json:"active" gorm:"not null;default:true"`
	AcceptingOrders bool         `json:"accepting_orders" gorm:"not null;default:true"`
	Rating          float64      `json:"rating" gorm:"not null;default:5.0"`
	RatingCount     int64        `json:"rating_count" gorm:"not null;default:0"`
	OrderCount      int64        `json:"order_count" gorm:"not null;default:0"`
	DailyOrderCount int64        `json:"daily_order_count" gorm:"not null;default:0"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Escort) TableName() string { return "escorts" }

// StatusLog is an append-only audit entry for order status transitions
// involving an escort.
type StatusLog struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	EscortID   snowflake.ID `json:"escort_id" gorm:"not null;index"`
	OrderID    snowflake.ID `json:"order_id" gorm:"not null;index"`
	FromStatus string       `json:"from_status" gorm:"type:text;not null"`
	ToStatus   string       `json:"to_status" gorm:"type:text;not null"`
	Note       string       `json:"note,omitempty" gorm:"type:text"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (StatusLog) TableName() string { return "escort_status_logs" }
