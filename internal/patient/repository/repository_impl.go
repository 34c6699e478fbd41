package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	patientdomain "github.com/carewise/escortcare/internal/patient/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() patientdomain.Repository {
	return &repo{}
}

func (r *repo) BelongsToUser(ctx context.Context, db *gorm.DB, patientID, userID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&patientdomain.Patient{}).
		Where("id = ? AND user_id = ?", patientID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
