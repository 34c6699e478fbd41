// Package domain contains the patient-ownership edge consumed by order creation.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Patient struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID    snowflake.ID `json:"user_id" gorm:"not null;index"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	IDNumber  string       `json:"id_number,omitempty" gorm:"type:text"`
	Phone     string       `json:"phone,omitempty" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Patient) TableName() string { return "patients" }

type Repository interface {
	// BelongsToUser reports whether the patient exists and is owned by the user.
	BelongsToUser(ctx context.Context, db *gorm.DB, patientID, userID snowflake.ID) (bool, error)
}

var ErrPatientNotOwned = errors.New("patient_not_owned")
