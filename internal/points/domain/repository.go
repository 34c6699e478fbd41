package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// CurrentPoints returns the user's balance; a missing row is zero.
	CurrentPoints(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error)
	// Debit re-reads the balance under row lock inside the caller's
	// transaction, fails with ErrInsufficientPoints when it no longer covers
	// points, then decrements it and appends one ledger entry.
	Debit(ctx context.Context, db *gorm.DB, genID *snowflake.Node, userID snowflake.ID, points int64, source string, sourceID snowflake.ID) error
	// Grant credits points and appends one ledger entry, creating the
	// balance row when absent.
	Grant(ctx context.Context, db *gorm.DB, genID *snowflake.Node, userID snowflake.ID, points int64, source string, sourceID snowflake.ID) error
}

var (
	ErrInsufficientPoints = errors.New("insufficient_points")
	ErrInvalidPoints      = errors.New("invalid_points")
)
