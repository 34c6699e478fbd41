package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	reviewdomain "github.com/carewise/escortcare/internal/review/domain"
	"github.com/gin-gonic/gin"
)

type createReviewRequest struct {
	EscortID snowflake.ID `json:"escort_id"`
	OrderID  snowflake.ID `json:"order_id"`
	Stars    int          `json:"stars"`
	Content  string       `json:"content"`
}

func (s *Server) CreateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	review, err := s.reviewSvc.RecordReview(c.Request.Context(), reviewdomain.CreateRequest{
		EscortID: req.EscortID,
		OrderID:  req.OrderID,
		UserID:   userID,
		Stars:    req.Stars,
		Content:  strings.TrimSpace(req.Content),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": review})
}
