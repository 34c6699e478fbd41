// Package domain contains escort reviews and the rating recomputation surface.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// PositiveStars is the threshold at and above which a review counts as
// positive for the rating computation.
const PositiveStars = 4

type Review struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	EscortID snowflake.ID `json:"escort_id" gorm:"not null;index"`
	OrderID  snowflake.ID `json:"order_id" gorm:"not null;uniqueIndex"`
	UserID   snowflake.ID `json:"user_id" gorm:"not null;index"`
	Stars    int          `json:"stars" gorm:"not null"`
	Content  string       `json:"content,omitempty" gorm:"type:text"`
	// Visible reviews count toward the escort's public rating; hidden ones
	// are kept for audit but ignored.
	Visible   bool      `json:"visible" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Review) TableName() string { return "escort_reviews" }

type CreateRequest struct {
	EscortID snowflake.ID
	OrderID  snowflake.ID
	UserID   snowflake.ID
	Stars    int
	Content  string
}

type Service interface {
	// RecordReview stores a review and recomputes the escort's public rating.
	RecordReview(ctx context.Context, req CreateRequest) (*Review, error)
	// RecomputeRating rebuilds the escort's rating from all visible reviews.
	RecomputeRating(ctx context.Context, escortID snowflake.ID) (float64, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, review *Review) error
	// CountsByEscort returns visible-review totals: all reviews and those at
	// or above the positive-star threshold.
	CountsByEscort(ctx context.Context, db *gorm.DB, escortID snowflake.ID) (total, positive int64, err error)
}

var (
	ErrInvalidStars       = errors.New("invalid_stars")
	ErrDuplicateReview    = errors.New("duplicate_review")
	ErrOrderNotReviewable = errors.New("order_not_reviewable")
)
