package handler

import (
	"errors"
	"net/http"

	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/authorization"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/history"
	"github.com/Kaosethi/MerchantApp-sub000/pos-service/internal/repository"
	"github.com/Kaosethi/MerchantApp-sub000/shared/middleware"
	"github.com/gin-gonic/gin"
)

// respondWithError maps service errors to status codes. fallback is the
// message used for anything unexpected.
func respondWithError(c *gin.Context, err error, fallback string) {
	var validationErr *authorization.ValidationError
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, repository.ErrReceiptNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Receipt not found")
	case errors.Is(err, repository.ErrForbidden):
		middleware.RespondWithError(c, http.StatusForbidden, "You can only access your own sessions")
	case errors.As(err, &validationErr):
		middleware.RespondWithFieldError(c, http.StatusUnprocessableEntity, validationErr.Field, validationErr.Message)
	case errors.Is(err, history.ErrInvalidFilter):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, authorization.ErrLocked):
		middleware.RespondWithError(c, http.StatusConflict, "Too many incorrect PIN attempts. This transaction is locked.")
	case errors.Is(err, authorization.ErrSubmissionInFlight), errors.Is(err, history.ErrFetchInFlight):
		middleware.RespondWithError(c, http.StatusConflict, "A request for this session is already in progress")
	case errors.Is(err, authorization.ErrAlreadyAuthorized):
		middleware.RespondWithError(c, http.StatusConflict, "Transaction already authorized")
	case errors.Is(err, authorization.ErrPinFull):
		middleware.RespondWithError(c, http.StatusConflict, "PIN already complete")
	case errors.Is(err, authorization.ErrSessionClosed), errors.Is(err, history.ErrClosed):
		middleware.RespondWithError(c, http.StatusGone, "Session closed")
	default:
		_ = c.Error(err)
		middleware.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
