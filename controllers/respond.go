package controllers

import (
	"errors"
	"log"
	"net/http"

	"shop-backend/models"

	"github.com/gin-gonic/gin"
)

// respondError maps the engine's typed errors to HTTP statuses. Anything
// unrecognized is logged and answered with a generic 500 so internal
// storage error text never leaks to clients.
func respondError(c *gin.Context, err error) {
	var (
		validation   *models.ValidationError
		notFound     *models.NotFoundError
		conflict     *models.ConflictError
		insufficient *models.InsufficientStockError
		denied       *models.AccessDeniedError
		unavailable  *models.ServiceUnavailableError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: validation.Message})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"success":    false,
			"message":    insufficient.Error(),
			"product_id": insufficient.ProductID,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: conflict.Message})
	case errors.As(err, &denied):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Success: false, Message: denied.Error()})
	case errors.As(err, &unavailable):
		log.Printf("service unavailable: %v", errors.Unwrap(unavailable))
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success: false,
			Message: "Service temporarily unavailable, please retry",
		})
	default:
		log.Printf("unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "Internal server error",
		})
	}
}
