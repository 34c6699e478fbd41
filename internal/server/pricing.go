package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	"github.com/gin-gonic/gin"
)

type quoteRequest struct {
	ServiceID   snowflake.ID  `json:"service_id"`
	Quantity    int64         `json:"quantity"`
	CouponID    *snowflake.ID `json:"coupon_id"`
	CampaignID  *snowflake.ID `json:"campaign_id"`
	PointsToUse int64         `json:"points_to_use"`
}

func (s *Server) Quote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	breakdown, err := s.pricingSvc.Quote(c.Request.Context(), pricingdomain.QuoteRequest{
		ServiceID:   req.ServiceID,
		Quantity:    req.Quantity,
		UserID:      userID,
		CouponID:    req.CouponID,
		CampaignID:  req.CampaignID,
		PointsToUse: req.PointsToUse,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.QuotesTotal.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"data": breakdown})
}

func (s *Server) GetPricingConfig(c *gin.Context) {
	cfg, err := s.pricingCfgSvc.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}

func (s *Server) UpdatePricingConfig(c *gin.Context) {
	var req pricingdomain.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cfg, err := s.pricingCfgSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}
