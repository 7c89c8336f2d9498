package restapi

import (
	"errors"
	"net/http"

	"portal_wallet/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// statusFor maps client errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidAmount),
		errors.Is(err, entity.ErrInvalidPin),
		errors.Is(err, entity.ErrInvalidAddress),
		errors.Is(err, entity.ErrInvalidTxHash),
		errors.Is(err, entity.ErrUnknownChainTarget),
		errors.Is(err, entity.ErrMissingAPIKey):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrSessionNotInitialized):
		return http.StatusConflict
	case errors.Is(err, entity.ErrAddressUnresolved):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrNotImplemented),
		errors.Is(err, entity.ErrFundingUnavailable):
		return http.StatusNotImplemented
	case errors.Is(err, entity.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, entity.ErrNetwork),
		errors.Is(err, entity.ErrBuild),
		errors.Is(err, entity.ErrSubmit):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the body of every failed response.
type APIError struct {
	Error string `json:"error"`
}

func (h *WalletHandler) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "status", status, "error", err)
	} else {
		h.logger.Debug("Request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, APIError{Error: err.Error()})
}
