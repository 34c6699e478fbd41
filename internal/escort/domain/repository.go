package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Escort, error)
	IncrementOrderCounters(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	AppendStatusLog(ctx context.Context, db *gorm.DB, entry *StatusLog) error
	// UpdateRating stores a recomputed public rating and review count.
	UpdateRating(ctx context.Context, db *gorm.DB, id snowflake.ID, rating float64, count int64) error
}

var (
	ErrEscortNotFound     = errors.New("escort_not_found")
	ErrEscortNotAccepting = errors.New("escort_not_accepting")
	ErrEscortSlotTaken    = errors.New("escort_slot_taken")
)
