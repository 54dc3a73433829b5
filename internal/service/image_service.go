package service

import (
	"context"
	"io"
	"regexp"
	"strings"
	"time"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageCDN is the external image storage collaborator. Upload returns the
// public URL of the stored object; Delete removes it by external identifier.
type ImageCDN interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
	Delete(ctx context.Context, publicID string) error
}

// ImageService defines the interface for product image business logic. It
// owns the "at most one primary image per product" invariant.
type ImageService interface {
	Add(ctx context.Context, cmd *catalog.CreateImageCommand) (*domain.ProductImage, error)
	Update(ctx context.Context, cmd *catalog.UpdateImageCommand) (*domain.ProductImage, error)
	Delete(ctx context.Context, productID, imageID uuid.UUID) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
	Upload(ctx context.Context, file io.Reader) (string, error)
}

type imageService struct {
	store  repository.Store
	cdn    ImageCDN
	logger *zap.Logger
}

// NewImageService creates a new instance of ImageService.
func NewImageService(store repository.Store, cdn ImageCDN, logger *zap.Logger) ImageService {
	return &imageService{store: store, cdn: cdn, logger: logger}
}

// Add attaches an image to a live product. A primary image is written inside
// a transaction that first clears the flag on its siblings; a non-primary
// image cannot violate the invariant and takes the direct path.
func (s *imageService) Add(ctx context.Context, cmd *catalog.CreateImageCommand) (*domain.ProductImage, error) {
	if _, err := s.store.Products().FindByID(ctx, cmd.ProductID, false); err != nil {
		return nil, err
	}

	image := &domain.ProductImage{
		ID:        uuid.New(),
		ProductID: cmd.ProductID,
		URL:       cmd.URL,
		AltText:   cmd.AltText,
		IsPrimary: cmd.IsPrimary,
		SortOrder: cmd.SortOrder,
		CreatedAt: time.Now(),
	}

	if !cmd.IsPrimary {
		if err := s.store.Images().Create(ctx, image); err != nil {
			return nil, err
		}
		return image, nil
	}

	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		if err := tx.Images().ClearPrimary(ctx, cmd.ProductID, nil); err != nil {
			return err
		}
		return tx.Images().Create(ctx, image)
	})
	if err != nil {
		return nil, err
	}

	return image, nil
}

// Update patches an image after checking it belongs to the stated product.
// A mismatch is not found, not forbidden: ownership, not authorization, is
// what fails. Promoting to primary runs in the same clear-then-write
// transaction as Add.
func (s *imageService) Update(ctx context.Context, cmd *catalog.UpdateImageCommand) (*domain.ProductImage, error) {
	if _, err := s.store.Products().FindByID(ctx, cmd.ProductID, false); err != nil {
		return nil, err
	}

	image, err := s.store.Images().FindByID(ctx, cmd.ImageID)
	if err != nil {
		return nil, err
	}
	if image.ProductID != cmd.ProductID {
		return nil, repository.ErrImageNotFound
	}

	if cmd.URL != nil {
		image.URL = *cmd.URL
	}
	if cmd.AltText != nil {
		image.AltText = cmd.AltText
	}
	if cmd.IsPrimary != nil {
		image.IsPrimary = *cmd.IsPrimary
	}
	if cmd.SortOrder != nil {
		image.SortOrder = *cmd.SortOrder
	}

	if cmd.IsPrimary == nil || !*cmd.IsPrimary {
		if err := s.store.Images().Update(ctx, image); err != nil {
			return nil, err
		}
		return image, nil
	}

	err = s.store.ExecTx(ctx, func(tx repository.Store) error {
		if err := tx.Images().ClearPrimary(ctx, cmd.ProductID, &image.ID); err != nil {
			return err
		}
		return tx.Images().Update(ctx, image)
	})
	if err != nil {
		return nil, err
	}

	return image, nil
}

// Delete removes an image row, then best-effort deletes the backing CDN
// object. The row delete is the durable source of truth: a CDN failure is
// logged and swallowed, never rolled back or surfaced.
func (s *imageService) Delete(ctx context.Context, productID, imageID uuid.UUID) error {
	if _, err := s.store.Products().FindByID(ctx, productID, false); err != nil {
		return err
	}

	image, err := s.store.Images().FindByID(ctx, imageID)
	if err != nil {
		return err
	}
	if image.ProductID != productID {
		return repository.ErrImageNotFound
	}

	if err := s.store.Images().Delete(ctx, imageID); err != nil {
		return err
	}

	if publicID := PublicIDFromURL(image.URL); publicID != "" {
		if err := s.cdn.Delete(ctx, publicID); err != nil {
			s.logger.Warn("CDN image delete failed",
				zap.String("image_id", imageID.String()),
				zap.String("public_id", publicID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// ListByProduct retrieves all images of a live product.
func (s *imageService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	if _, err := s.store.Products().FindByID(ctx, productID, false); err != nil {
		return nil, err
	}
	return s.store.Images().ListByProduct(ctx, productID)
}

// Upload sends a file to the CDN and returns its public URL.
func (s *imageService) Upload(ctx context.Context, file io.Reader) (string, error) {
	return s.cdn.Upload(ctx, file)
}

var cdnVersionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL derives the CDN external identifier from a stored image
// URL: the path after "/upload/<version>/" with the extension stripped.
// Returns "" when the URL does not look like a CDN delivery URL.
func PublicIDFromURL(rawURL string) string {
	idx := strings.Index(rawURL, "/upload/")
	if idx == -1 {
		return ""
	}
	rest := rawURL[idx+len("/upload/"):]

	slash := strings.Index(rest, "/")
	if slash == -1 || !cdnVersionSegment.MatchString(rest[:slash]) {
		return ""
	}

	publicID := rest[slash+1:]
	if q := strings.IndexAny(publicID, "?#"); q != -1 {
		publicID = publicID[:q]
	}
	if dot := strings.LastIndex(publicID, "."); dot != -1 {
		publicID = publicID[:dot]
	}
	if publicID == "" {
		return ""
	}
	return publicID
}
