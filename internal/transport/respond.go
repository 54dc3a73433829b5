package transport

import (
	"errors"
	"net/http"

	"catalog-api/internal/catalog"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"

	"go.uber.org/zap"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// validation failures are 400 with the offending field, collisions with a
// unique constraint are 409, missing rows are 404, everything else is an
// opaque 500.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *catalog.ValidationError

	switch {
	case errors.As(err, &verr):
		middleware.RespondWithFieldError(w, verr.Field, verr.Message)
	case errors.Is(err, repository.ErrDuplicateSlug):
		middleware.RespondWithError(w, http.StatusConflict, "slug already exists")
	case errors.Is(err, repository.ErrProductTypeExists):
		middleware.RespondWithError(w, http.StatusConflict, "product type with this name already exists")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrImageNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "image not found")
	case errors.Is(err, repository.ErrProductTypeNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product type not found")
	default:
		logger.Error("Request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
