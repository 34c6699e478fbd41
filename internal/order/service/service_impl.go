package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	campaigndomain "github.com/carewise/escortcare/internal/campaign/domain"
	catalogdomain "github.com/carewise/escortcare/internal/catalog/domain"
	"github.com/carewise/escortcare/internal/clock"
	coupondomain "github.com/carewise/escortcare/internal/coupon/domain"
	escortdomain "github.com/carewise/escortcare/internal/escort/domain"
	membershipdomain "github.com/carewise/escortcare/internal/membership/domain"
	"github.com/carewise/escortcare/internal/observability/metrics"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	patientdomain "github.com/carewise/escortcare/internal/patient/domain"
	pointsdomain "github.com/carewise/escortcare/internal/points/domain"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	referraldomain "github.com/carewise/escortcare/internal/referral/domain"
	"github.com/carewise/escortcare/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const orderNoPrefix = "PE"

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Metrics        *metrics.Metrics `optional:"true"`
	Repo           orderdomain.Repository
	PatientRepo    patientdomain.Repository
	CatalogRepo    catalogdomain.Repository
	CampaignRepo   campaigndomain.Repository
	CouponRepo     coupondomain.Repository
	PointsRepo     pointsdomain.Repository
	MembershipRepo membershipdomain.Repository
	EscortRepo     escortdomain.Repository
	Pricing        pricingdomain.Service
	CouponSvc      coupondomain.Service
	ReferralSvc    referraldomain.Service
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	metrics        *metrics.Metrics
	repo           orderdomain.Repository
	patientRepo    patientdomain.Repository
	catalogRepo    catalogdomain.Repository
	campaignRepo   campaigndomain.Repository
	couponRepo     coupondomain.Repository
	pointsRepo     pointsdomain.Repository
	membershipRepo membershipdomain.Repository
	escortRepo     escortdomain.Repository
	pricing        pricingdomain.Service
	couponSvc      coupondomain.Service
	referralSvc    referraldomain.Service
}

func New(p Params) orderdomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("order.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		metrics:        p.Metrics,
		repo:           p.Repo,
		patientRepo:    p.PatientRepo,
		catalogRepo:    p.CatalogRepo,
		campaignRepo:   p.CampaignRepo,
		couponRepo:     p.CouponRepo,
		pointsRepo:     p.PointsRepo,
		membershipRepo: p.MembershipRepo,
		escortRepo:     p.EscortRepo,
		pricing:        p.Pricing,
		couponSvc:      p.CouponSvc,
		referralSvc:    p.ReferralSvc,
	}
}

// Create settles a new order in one transaction: slot check, fresh quote,
// order row, snapshot, coupon consumption, points debit, campaign
// participation, and counters all land together or not at all.
func (s *Service) Create(ctx context.Context, userID snowflake.ID, req orderdomain.CreateRequest) (*orderdomain.Order, error) {
	if err := validateCreate(userID, req); err != nil {
		return nil, err
	}

	owned, err := s.patientRepo.BelongsToUser(ctx, s.db, req.PatientID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, patientdomain.ErrPatientNotOwned
	}

	var order *orderdomain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()

		escort, err := s.checkEscort(ctx, tx, req)
		if err != nil {
			return err
		}

		// Price inside the transaction; the client-supplied amount is never
		// trusted.
		quote, err := s.pricing.QuoteTx(ctx, tx, pricingdomain.QuoteRequest{
			ServiceID:   req.ServiceID,
			Quantity:    req.Quantity,
			UserID:      userID,
			CouponID:    req.CouponID,
			CampaignID:  req.CampaignID,
			PointsToUse: req.PointsToUse,
		})
		if err != nil {
			return err
		}

		order = s.buildOrder(userID, req, quote, now)
		if err := s.repo.Insert(ctx, tx, order); err != nil {
			return err
		}
		if err := s.repo.InsertSnapshot(ctx, tx, s.buildSnapshot(order.ID, quote)); err != nil {
			return err
		}

		if quote.CouponID != nil {
			if err := s.couponRepo.MarkUsed(ctx, tx, *quote.CouponID, order.ID, now); err != nil {
				return err
			}
		}

		if quote.PointsUsed > 0 {
			// Re-reads the balance under lock; a stale quote fails here.
			if err := s.pointsRepo.Debit(ctx, tx, s.genID, userID, quote.PointsUsed, "order", order.ID); err != nil {
				return err
			}
		}

		if quote.CampaignID != nil {
			if err := s.recordCampaign(ctx, tx, userID, order, quote); err != nil {
				return err
			}
		}

		if err := s.catalogRepo.IncrementOrderCount(ctx, tx, req.ServiceID); err != nil {
			return err
		}

		if escort != nil {
			if err := s.assignEscort(ctx, tx, escort, order); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreatedTotal.Inc()
	}
	s.log.Info("order created",
		zap.String("order_no", order.OrderNo),
		zap.Int64("user_id", userID.Int64()),
		zap.String("paid_amount", order.PaidAmount.String()))
	return order, nil
}

func validateCreate(userID snowflake.ID, req orderdomain.CreateRequest) error {
	if userID == 0 || req.ServiceID == 0 || req.PatientID == 0 || req.HospitalID == 0 {
		return orderdomain.ErrInvalidRequest
	}
	if req.Quantity <= 0 || strings.TrimSpace(req.TimeSlot) == "" || req.VisitDate.IsZero() {
		return orderdomain.ErrInvalidRequest
	}
	if req.PointsToUse < 0 {
		return orderdomain.ErrInvalidRequest
	}
	return nil
}

// checkEscort verifies an explicitly requested escort is active, accepting
// work, and free for the requested hospital date/time slot.
func (s *Service) checkEscort(ctx context.Context, tx *gorm.DB, req orderdomain.CreateRequest) (*escortdomain.Escort, error) {
	if req.EscortID == nil {
		return nil, nil
	}

	escort, err := s.escortRepo.FindByID(ctx, tx, *req.EscortID)
	if err != nil {
		return nil, err
	}
	if escort == nil || !escort.Active {
		return nil, escortdomain.ErrEscortNotFound
	}
	if !escort.AcceptingOrders {
		return nil, escortdomain.ErrEscortNotAccepting
	}

	conflicts, err := s.repo.CountActiveByEscortSlot(ctx, tx, escort.ID, req.HospitalID, req.VisitDate, req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if conflicts > 0 {
		return nil, escortdomain.ErrEscortSlotTaken
	}
	return escort, nil
}

func (s *Service) buildOrder(userID snowflake.ID, req orderdomain.CreateRequest, quote *pricingdomain.Breakdown, now time.Time) *orderdomain.Order {
	status := orderdomain.StatusPending
	if req.EscortID != nil {
		status = orderdomain.StatusAssigned
	}
	return &orderdomain.Order{
		ID:             s.genID.Generate(),
		OrderNo:        s.newOrderNo(now),
		UserID:         userID,
		PatientID:      req.PatientID,
		ServiceID:      req.ServiceID,
		EscortID:       req.EscortID,
		HospitalID:     req.HospitalID,
		VisitDate:      datatypes.Date(req.VisitDate),
		TimeSlot:       req.TimeSlot,
		Quantity:       req.Quantity,
		TotalAmount:    quote.OriginalPrice,
		DiscountAmount: quote.TotalDiscount,
		PaidAmount:     quote.FinalPrice,
		CouponID:       quote.CouponID,
		CampaignID:     quote.CampaignID,
		PointsUsed:     quote.PointsUsed,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *Service) buildSnapshot(orderID snowflake.ID, quote *pricingdomain.Breakdown) *orderdomain.Snapshot {
	return &orderdomain.Snapshot{
		ID:                    s.genID.Generate(),
		OrderID:               orderID,
		ServiceID:             quote.ServiceID,
		Quantity:              quote.Quantity,
		UnitPrice:             quote.UnitPrice,
		StackMode:             string(quote.StackMode),
		OriginalPrice:         quote.OriginalPrice,
		CampaignID:            quote.CampaignID,
		CampaignDiscount:      quote.CampaignDiscount,
		PriceAfterCampaign:    quote.PriceAfterCampaign,
		MemberDiscount:        quote.MemberDiscount,
		PriceAfterMember:      quote.PriceAfterMember,
		CouponID:              quote.CouponID,
		CouponDiscount:        quote.CouponDiscount,
		PriceAfterCoupon:      quote.PriceAfterCoupon,
		PointsUsed:            quote.PointsUsed,
		PointsDiscount:        quote.PointsDiscount,
		PriceAfterPoints:      quote.PriceAfterPoints,
		FinalPrice:            quote.FinalPrice,
		TotalDiscount:         quote.TotalDiscount,
		OvertimeWaiverPercent: quote.OvertimeWaiverPercent,
		ComputedAt:            quote.ComputedAt,
	}
}

func (s *Service) recordCampaign(ctx context.Context, tx *gorm.DB, userID snowflake.ID, order *orderdomain.Order, quote *pricingdomain.Breakdown) error {
	campaign, err := s.campaignRepo.FindByID(ctx, tx, *quote.CampaignID)
	if err != nil {
		return err
	}
	if campaign != nil && campaign.Limited() {
		if err := s.campaignRepo.TakeStock(ctx, tx, campaign.ID); err != nil {
			return err
		}
	}
	return s.campaignRepo.AppendParticipation(ctx, tx, &campaigndomain.Participation{
		ID:         s.genID.Generate(),
		CampaignID: *quote.CampaignID,
		UserID:     userID,
		OrderID:    order.ID,
		Discount:   quote.CampaignDiscount,
	})
}

func (s *Service) assignEscort(ctx context.Context, tx *gorm.DB, escort *escortdomain.Escort, order *orderdomain.Order) error {
	if err := s.escortRepo.IncrementOrderCounters(ctx, tx, escort.ID); err != nil {
		return err
	}
	return s.escortRepo.AppendStatusLog(ctx, tx, &escortdomain.StatusLog{
		ID:         s.genID.Generate(),
		EscortID:   escort.ID,
		OrderID:    order.ID,
		FromStatus: string(orderdomain.StatusPending),
		ToStatus:   string(orderdomain.StatusAssigned),
		Note:       "assigned at creation",
	})
}

// newOrderNo builds a prefix + compact date + random suffix order number.
// Collisions are vanishingly unlikely and surface as a unique-index conflict
// rather than being retried.
func (s *Service) newOrderNo(now time.Time) string {
	return fmt.Sprintf("%s%s%09d", orderNoPrefix, now.Format("20060102"), rand.Int63n(1_000_000_000))
}

func (s *Service) GetByOrderNo(ctx context.Context, orderNo string) (*orderdomain.Order, error) {
	order, err := s.repo.FindByOrderNo(ctx, s.db, orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) GetSnapshot(ctx context.Context, orderID snowflake.ID) (*orderdomain.Snapshot, error) {
	snap, err := s.repo.SnapshotByOrderID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, orderdomain.ErrOrderNotFound
	}
	return snap, nil
}

func (s *Service) List(ctx context.Context, userID snowflake.ID, page pagination.Pagination) ([]orderdomain.Order, *pagination.PageInfo, error) {
	limit := page.PageSize
	if limit <= 0 {
		limit = 20
	}

	var createdBefore *time.Time
	var beforeID snowflake.ID
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, nil, orderdomain.ErrInvalidRequest
		}
		if cursor.CreatedAt != "" {
			ts, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
			if err != nil {
				return nil, nil, orderdomain.ErrInvalidRequest
			}
			createdBefore = &ts
		}
		if cursor.ID != "" {
			id, err := snowflake.ParseString(cursor.ID)
			if err != nil {
				return nil, nil, orderdomain.ErrInvalidRequest
			}
			beforeID = id
		}
	}

	items, err := s.repo.ListByUser(ctx, s.db, userID, createdBefore, beforeID, limit+1)
	if err != nil {
		return nil, nil, err
	}

	items, info := pagination.BuildCursorPageInfo(items, limit, func(o orderdomain.Order) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        o.ID.String(),
			CreatedAt: o.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})
	return items, info, nil
}
