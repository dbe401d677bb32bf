package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/features/query/customerorders"
)

const (
	msgInternalError = "une erreur interne est survenue"
	msgInvalidInput  = "données invalides"
)

// envelope is the body of every response.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"erreurs,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondIdempotent(c *gin.Context, message, reason string, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Info: reason, Data: data})
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrDeliveryUnavailable),
		errors.Is(err, orderstore.ErrInvalidStorableOrder):
		return http.StatusBadRequest

	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, customerorders.ErrCustomerRequired):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrForbiddenTransition),
		errors.Is(err, core.ErrNotOrderOwner),
		errors.Is(err, core.ErrAdminOnly):
		return http.StatusForbidden

	case errors.Is(err, orderstore.ErrOrderNotFound):
		return http.StatusNotFound

	case errors.Is(err, orderstore.ErrStateConflict):
		return http.StatusConflict

	case errors.Is(err, core.ErrQuickConfirmNotApplicable),
		errors.Is(err, core.ErrOrderNotCancelled):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	abortWithError(c, statusFor(err), err)
}

// abortWithError writes the error envelope. Internal errors never leak their message.
func abortWithError(c *gin.Context, status int, err error) {
	_ = c.Error(err)

	body := envelope{Success: false, Message: err.Error()}

	var verr *core.ValidationError
	if errors.As(err, &verr) {
		body.Message = msgInvalidInput
		body.Errors = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		body.Message = msgInternalError
	}

	c.AbortWithStatusJSON(status, body)
}
