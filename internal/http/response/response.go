package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogrepo "github.com/storefront/orderflow/internal/data/repos/catalog"
	"github.com/storefront/orderflow/internal/domain/order"
	"github.com/storefront/orderflow/internal/platform/apierr"
	"github.com/storefront/orderflow/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondMapped translates domain and service errors to their transport
// status in one place, so handlers stay mechanical.
func RespondMapped(c *gin.Context, err error) {
	ae := mapError(err)
	RespondError(c, ae.Status, ae.Code, err)
}

func mapError(err error) *apierr.Error {
	var transition *order.TransitionError
	switch {
	case errors.Is(err, order.ErrNotFound):
		return apierr.NotFound("order_not_found", err)
	case errors.Is(err, catalogrepo.ErrProductNotFound),
		errors.Is(err, services.ErrUnresolvedProducts):
		return apierr.NotFound("product_not_found", err)
	case errors.As(err, &transition):
		return apierr.BadRequest("invalid_transition", err)
	case errors.Is(err, order.ErrNotAmendable):
		return apierr.BadRequest("order_not_amendable", err)
	case errors.Is(err, order.ErrEmptyOrder):
		return apierr.BadRequest("empty_order", err)
	case errors.Is(err, order.ErrOrderCompleted):
		return apierr.BadRequest("order_completed", err)
	case errors.Is(err, order.ErrVersionConflict):
		return apierr.Conflict("version_conflict", err)
	case errors.Is(err, services.ErrBadCredentials),
		errors.Is(err, services.ErrTokenExpired),
		errors.Is(err, services.ErrTokenInvalid):
		return apierr.Unauthorized("unauthorized", err)
	case errors.Is(err, services.ErrUserInactive):
		return apierr.Forbidden("user_inactive", err)
	case errors.Is(err, services.ErrUsernameTaken):
		return apierr.Conflict("username_taken", err)
	default:
		return apierr.New(http.StatusInternalServerError, "internal_error", err)
	}
}
