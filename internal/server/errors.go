package server

import (
	"errors"
	"net/http"

	campaigndomain "github.com/carewise/escortcare/internal/campaign/domain"
	catalogdomain "github.com/carewise/escortcare/internal/catalog/domain"
	coupondomain "github.com/carewise/escortcare/internal/coupon/domain"
	escortdomain "github.com/carewise/escortcare/internal/escort/domain"
	membershipdomain "github.com/carewise/escortcare/internal/membership/domain"
	orderdomain "github.com/carewise/escortcare/internal/order/domain"
	patientdomain "github.com/carewise/escortcare/internal/patient/domain"
	pointsdomain "github.com/carewise/escortcare/internal/points/domain"
	pricingdomain "github.com/carewise/escortcare/internal/pricing/domain"
	reviewdomain "github.com/carewise/escortcare/internal/review/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Code:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, pricingdomain.ErrMembershipRequired),
		errors.Is(err, membershipdomain.ErrMembershipRequired):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Code:    "membership_required",
			Message: "this service is for members only",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    err.Error(),
			Message: "invalid request",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    err.Error(),
			Message: "conflict",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Code:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrInvalidRequest),
		errors.Is(err, pricingdomain.ErrInvalidQuantity),
		errors.Is(err, pricingdomain.ErrInvalidStackMode),
		errors.Is(err, pricingdomain.ErrInvalidConfig),
		errors.Is(err, pricingdomain.ErrServiceInactive),
		errors.Is(err, pointsdomain.ErrInvalidPoints),
		errors.Is(err, reviewdomain.ErrInvalidStars),
		errors.Is(err, reviewdomain.ErrOrderNotReviewable):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, pricingdomain.ErrServiceNotFound),
		errors.Is(err, catalogdomain.ErrServiceNotFound),
		errors.Is(err, campaigndomain.ErrCampaignNotFound),
		errors.Is(err, coupondomain.ErrCouponNotFound),
		errors.Is(err, escortdomain.ErrEscortNotFound),
		errors.Is(err, patientdomain.ErrPatientNotOwned),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, coupondomain.ErrCouponAlreadyUsed),
		errors.Is(err, escortdomain.ErrEscortSlotTaken),
		errors.Is(err, escortdomain.ErrEscortNotAccepting),
		errors.Is(err, pointsdomain.ErrInsufficientPoints),
		errors.Is(err, campaigndomain.ErrStockExhausted),
		errors.Is(err, orderdomain.ErrCancelNotAllowed),
		errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, reviewdomain.ErrDuplicateReview):
		return true
	default:
		return false
	}
}
