package services

import (
	"errors"

	"shop-backend/models"
)

// engineError passes the typed engine errors through and wraps everything
// else (store unreachable, timeouts, driver failures) as a retryable
// ServiceUnavailable. By the time it is returned no partial write survives:
// every mutation path commits or rolls back as a unit.
func engineError(err error) error {
	if err == nil {
		return nil
	}

	var (
		validation   *models.ValidationError
		notFound     *models.NotFoundError
		conflict     *models.ConflictError
		insufficient *models.InsufficientStockError
		denied       *models.AccessDeniedError
		unavailable  *models.ServiceUnavailableError
	)
	if errors.As(err, &validation) || errors.As(err, &notFound) || errors.As(err, &conflict) ||
		errors.As(err, &insufficient) || errors.As(err, &denied) || errors.As(err, &unavailable) {
		return err
	}

	return &models.ServiceUnavailableError{Err: err}
}
