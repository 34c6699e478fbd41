package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carewise/escortcare/pkg/db/pagination"
)

type CreateRequest struct {
	ServiceID   snowflake.ID
	PatientID   snowflake.ID
	HospitalID  snowflake.ID
	EscortID    *snowflake.ID
	VisitDate   time.Time
	TimeSlot    string
	Quantity    int64
	CouponID    *snowflake.ID
	CampaignID  *snowflake.ID
	PointsToUse int64
}

// Service is the order settlement surface. Create is fully atomic: the order
// row, its snapshot, and every ledger side effect land together or not at all.
type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateRequest) (*Order, error)
	Cancel(ctx context.Context, userID snowflake.ID, orderNo string) (*Order, error)
	// MarkPaid is the payment-callback entry point; re-delivery for an
	// already settled order is a no-op success.
	MarkPaid(ctx context.Context, orderNo, transactionID string) (*Order, error)
	Complete(ctx context.Context, orderNo string) (*Order, error)
	GetByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	GetSnapshot(ctx context.Context, orderID snowflake.ID) (*Snapshot, error)
	List(ctx context.Context, userID snowflake.ID, page pagination.Pagination) ([]Order, *pagination.PageInfo, error)
}

var (
	ErrOrderNotFound     = errors.New("order_not_found")
	ErrInvalidRequest    = errors.New("invalid_order_request")
	ErrCancelNotAllowed  = errors.New("cancel_not_allowed")
	ErrInvalidTransition = errors.New("invalid_status_transition")
)
