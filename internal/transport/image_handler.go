package transport

import (
	"net/http"

	"catalog-api/internal/catalog"
	"catalog-api/internal/middleware"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

// UploadResponse carries the public URL of an uploaded file.
type UploadResponse struct {
	URL string `json:"url"`
}

// ImageHandler handles HTTP requests for product image operations.
type ImageHandler struct {
	imageService service.ImageService
	logger       *zap.Logger
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(imageService service.ImageService, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		logger:       logger,
	}
}

// RegisterRoutes registers image routes. Listing is public; mutations and
// uploads require an admin token.
func (h *ImageHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/products/{id}/images", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(requireAdmin)
			r.Post("/", h.Add)
			r.Put("/{imageID}", h.Update)
			r.Delete("/{imageID}", h.Delete)
		})
	})

	r.With(authMiddleware, requireAdmin).Post("/api/images/upload", h.Upload)
}

// List handles listing all images of a product.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	images, err := h.imageService.ListByProduct(r.Context(), productID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, images)
}

// Add handles attaching an image to a product.
func (h *ImageHandler) Add(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var in catalog.CreateImageInput
	if err := middleware.DecodeAndValidate(r, &in); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd, verr := catalog.ValidateCreateImage(productID, &in)
	if verr != nil {
		middleware.RespondWithFieldError(w, verr.Field, verr.Message)
		return
	}

	image, err := h.imageService.Add(r.Context(), cmd)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Image added",
		zap.String("product_id", productID.String()),
		zap.String("image_id", image.ID.String()),
		zap.Bool("is_primary", image.IsPrimary),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, image)
}

// Update handles patching an image.
func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	var in catalog.UpdateImageInput
	if err := middleware.DecodeAndValidate(r, &in); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd, verr := catalog.ValidateUpdateImage(productID, imageID, &in)
	if verr != nil {
		middleware.RespondWithFieldError(w, verr.Field, verr.Message)
		return
	}

	image, err := h.imageService.Update(r.Context(), cmd)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, image)
}

// Delete handles removing an image.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	if err := h.imageService.Delete(r.Context(), productID, imageID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Image deleted",
		zap.String("product_id", productID.String()),
		zap.String("image_id", imageID.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}

// Upload handles a multipart file upload to the CDN.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	url, err := h.imageService.Upload(r.Context(), file)
	if err != nil {
		h.logger.Error("Image upload failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	h.logger.Info("Image uploaded", zap.String("url", url))
	middleware.RespondWithJSON(w, http.StatusCreated, UploadResponse{URL: url})
}
