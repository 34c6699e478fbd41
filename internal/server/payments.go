package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type paymentCallbackRequest struct {
	OrderNo       string `json:"order_no"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// PaymentCallback receives payment gateway notifications. Gateways retry
// until they see a success response, so replays must succeed too.
func (s *Server) PaymentCallback(c *gin.Context) {
	var req paymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	orderNo := strings.TrimSpace(req.OrderNo)
	transactionID := strings.TrimSpace(req.TransactionID)
	if orderNo == "" || transactionID == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.Status != "" && !strings.EqualFold(req.Status, "success") {
		// Failed payments leave the order pending; the user can retry.
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"acknowledged": true}})
		return
	}

	order, err := s.orderSvc.MarkPaid(c.Request.Context(), orderNo, transactionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
