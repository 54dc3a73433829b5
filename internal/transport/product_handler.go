package transport

import (
	"net/http"
	"strconv"

	"catalog-api/internal/catalog"
	"catalog-api/internal/middleware"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProductTypeRequest represents the create-product-type payload.
type CreateProductTypeRequest struct {
	Name string `json:"name" validate:"required"`
}

// PriceHistoryResponse wraps a product's price audit log.
type PriceHistoryResponse struct {
	Items interface{} `json:"items"`
}

// ProductHandler handles HTTP requests for catalog operations.
type ProductHandler struct {
	productService     service.ProductService
	productTypeService service.ProductTypeService
	logger             *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService service.ProductService, productTypeService service.ProductTypeService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService:     productService,
		productTypeService: productTypeService,
		logger:             logger,
	}
}

// RegisterRoutes registers catalog routes. Reads are public; mutations and
// soft-deleted visibility require an admin token.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/slug/{slug}", h.GetBySlug)
		r.Get("/{id}", h.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(requireAdmin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.SoftDelete)
			r.Post("/{id}/restore", h.Restore)
			r.Get("/{id}/price-history", h.PriceHistory)
		})
	})

	r.Route("/api/product-types", func(r chi.Router) {
		r.Get("/", h.ListProductTypes)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(requireAdmin)
			r.Post("/", h.CreateProductType)
		})
	})

	r.With(authMiddleware, requireAdmin).Get("/api/admin/products", h.AdminList)
}

// Create handles product creation.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateProductInput
	if err := middleware.DecodeAndValidate(r, &in); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd, verr := catalog.ValidateCreateProduct(&in)
	if verr != nil {
		middleware.RespondWithFieldError(w, verr.Field, verr.Message)
		return
	}

	if userID, ok := middleware.GetUserID(r.Context()); ok {
		cmd.CreatedByUserID = &userID
	}

	product, err := h.productService.Create(r.Context(), cmd)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles partial product updates.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var in catalog.UpdateProductInput
	if err := middleware.DecodeAndValidate(r, &in); err != nil {
		h.logger.Debug("Update product validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd, verr := catalog.ValidateUpdateProduct(&in)
	if verr != nil {
		middleware.RespondWithFieldError(w, verr.Field, verr.Message)
		return
	}

	if userID, ok := middleware.GetUserID(r.Context()); ok {
		cmd.ChangedByUserID = &userID
	}

	product, err := h.productService.Update(r.Context(), id, cmd)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// List handles the public product listing.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// AdminList handles the admin product listing, which can surface
// soft-deleted products.
func (h *ProductHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("include_deleted"))
	h.list(w, r, includeDeleted)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, includeSoftDeleted bool) {
	query := r.URL.Query()
	in := catalog.ListProductsInput{
		Page:               query.Get("page"),
		Limit:              query.Get("limit"),
		ProductTypeID:      query.Get("product_type_id"),
		IsActive:           query.Get("is_active"),
		IsHot:              query.Get("is_hot"),
		MinPrice:           query.Get("min_price"),
		MaxPrice:           query.Get("max_price"),
		Search:             query.Get("search"),
		SortBy:             query.Get("sort_by"),
		SortDirection:      query.Get("sort_direction"),
		IncludeSoftDeleted: includeSoftDeleted,
	}

	q, verr := catalog.ValidateListProducts(&in)
	if verr != nil {
		middleware.RespondWithFieldError(w, verr.Field, verr.Message)
		return
	}

	page, err := h.productService.List(r.Context(), q)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// GetByID handles fetching a single product by ID.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productService.GetByID(r.Context(), id, false)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetBySlug handles the customer-facing product detail read.
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !catalog.IsValidSlug(slug) {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid slug")
		return
	}

	product, err := h.productService.GetBySlug(r.Context(), slug)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// SoftDelete handles marking a product as deleted.
func (h *ProductHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.productService.SoftDelete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product soft-deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// Restore handles bringing a soft-deleted product back.
func (h *ProductHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productService.Restore(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product restored", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// PriceHistory handles reading a product's price audit log.
func (h *ProductHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	entries, err := h.productService.PriceHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PriceHistoryResponse{Items: entries})
}

// ListProductTypes handles listing all product types.
func (h *ProductHandler) ListProductTypes(w http.ResponseWriter, r *http.Request) {
	productTypes, err := h.productTypeService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, productTypes)
}

// CreateProductType handles creating a product type.
func (h *ProductHandler) CreateProductType(w http.ResponseWriter, r *http.Request) {
	var req CreateProductTypeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productType, err := h.productTypeService.Create(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product type created", zap.String("name", productType.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, productType)
}
