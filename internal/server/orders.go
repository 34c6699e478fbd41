package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	"github.com/carewise/escortcare/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	ServiceID   snowflake.ID  `json:"service_id"`
	PatientID   snowflake.ID  `json:"patient_id"`
	HospitalID  snowflake.ID  `json:"hospital_id"`
	EscortID    *snowflake.ID `json:"escort_id"`
	VisitDate   string        `json:"visit_date"`
	TimeSlot    string        `json:"time_slot"`
	Quantity    int64         `json:"quantity"`
	CouponID    *snowflake.ID `json:"coupon_id"`
	CampaignID  *snowflake.ID `json:"campaign_id"`
	PointsToUse int64         `json:"points_to_use"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	visitDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.VisitDate))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	order, err := s.orderSvc.Create(c.Request.Context(), userID, orderdomain.CreateRequest{
		ServiceID:   req.ServiceID,
		PatientID:   req.PatientID,
		HospitalID:  req.HospitalID,
		EscortID:    req.EscortID,
		VisitDate:   visitDate,
		TimeSlot:    strings.TrimSpace(req.TimeSlot),
		Quantity:    quantity,
		CouponID:    req.CouponID,
		CampaignID:  req.CampaignID,
		PointsToUse: req.PointsToUse,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	orders, info, err := s.orderSvc.List(c.Request.Context(), userID, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders, "page_info": info})
}

func (s *Server) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	order, err := s.orderSvc.GetByOrderNo(c.Request.Context(), c.Param("order_no"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if order.UserID != userID {
		AbortWithError(c, orderdomain.ErrOrderNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) GetOrderSnapshot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	order, err := s.orderSvc.GetByOrderNo(c.Request.Context(), c.Param("order_no"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if order.UserID != userID {
		AbortWithError(c, orderdomain.ErrOrderNotFound)
		return
	}

	snap, err := s.orderSvc.GetSnapshot(c.Request.Context(), order.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snap})
}

func (s *Server) CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	order, err := s.orderSvc.Cancel(c.Request.Context(), userID, c.Param("order_no"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

// CompleteOrder is the operator-facing completion endpoint.
func (s *Server) CompleteOrder(c *gin.Context) {
	order, err := s.orderSvc.Complete(c.Request.Context(), c.Param("order_no"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
