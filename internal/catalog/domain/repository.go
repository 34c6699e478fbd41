package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Service, error)
	IncrementOrderCount(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

var (
	ErrServiceNotFound = errors.New("service_not_found")
	ErrServiceInactive = errors.New("service_inactive")
)
