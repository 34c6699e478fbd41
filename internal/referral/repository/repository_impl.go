package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	referraldomain "github.com/carewise/escortcare/internal/referral/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() referraldomain.Repository {
	return &repo{}
}

func (r *repo) FindBindingByInvitee(ctx context.Context, db *gorm.DB, inviteeID snowflake.ID) (*referraldomain.Binding, error) {
	var b referraldomain.Binding
	err := db.WithContext(ctx).First(&b, "invitee_id = ?", inviteeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) InsertReward(ctx context.Context, db *gorm.DB, reward *referraldomain.Reward) error {
	return db.WithContext(ctx).Create(reward).Error
}
