package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"go-food-ordering/database"
	"go-food-ordering/media"
	"go-food-ordering/services"

	"github.com/gin-gonic/gin"
)

// ErrorStatus maps a domain error onto the HTTP status the API reports for it.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, media.ErrImageTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrRestaurantNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, database.ErrDuplicate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// RespondError writes err as a JSON message. Server errors are logged and
// replaced with a generic message, except gateway errors whose message comes
// from the provider.
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	status := ErrorStatus(err)

	if status == http.StatusUnauthorized {
		c.AbortWithStatus(status)
		return
	}

	var gatewayErr *services.PaymentGatewayError
	var uploadErr *media.UploadError
	switch {
	case errors.As(err, &gatewayErr):
		logger.Error("payment gateway failure",
			slog.String("action", "payment_gateway_error"),
			slog.String("request_id", c.GetString(RequestIDKey)),
			slog.String("error", err.Error()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": gatewayErr.Message})
	case errors.As(err, &uploadErr):
		logger.Error("image upload failure",
			slog.String("action", "image_upload_error"),
			slog.String("request_id", c.GetString(RequestIDKey)),
			slog.String("error", err.Error()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Unable to upload image"})
	case status == http.StatusInternalServerError:
		logger.Error("request failed",
			slog.String("action", "internal_error"),
			slog.String("request_id", c.GetString(RequestIDKey)),
			slog.String("error", err.Error()),
		)
		c.AbortWithStatusJSON(status, gin.H{"message": "Something went wrong"})
	default:
		c.AbortWithStatusJSON(status, gin.H{"message": err.Error()})
	}
}
