// Package domain contains loyalty point balances and their append-only ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type RecordType string

var (
	RecordEarn   RecordType = "earn"
	RecordRedeem RecordType = "redeem"
)

// Balance is the current point holding for one user. It only ever decreases
// through Debit, which re-reads the row under lock.
type Balance struct {
	UserID        snowflake.ID `json:"user_id" gorm:"primaryKey"`
	CurrentPoints int64        `json:"current_points" gorm:"not null;default:0"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Balance) TableName() string { return "user_points" }

// Record is one immutable ledger entry per balance change.
type Record struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID   snowflake.ID `json:"user_id" gorm:"not null;index"`
	Type     RecordType   `json:"type" gorm:"type:text;not null"`
	Points   int64        `json:"points" gorm:"not null"`
	Balance  int64        `json:"balance" gorm:"not null"`
	Source   string       `json:"source" gorm:"type:text;not null"`
	SourceID snowflake.ID `json:"source_id" gorm:"not null;index"`
	CreatedAt time.Time   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Record) TableName() string { return "point_records" }
