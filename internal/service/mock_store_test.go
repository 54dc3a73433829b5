package service

import (
	"context"
	"time"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
)

// In-memory store for testing. ExecTx counts invocations so tests can assert
// which paths open a transaction.

type mockStore struct {
	products      *mockProductRepository
	images        *mockImageRepository
	priceHistory  *mockPriceHistoryRepository
	productTypes  *mockProductTypeRepository
	users         *mockUserRepository
	refreshTokens *mockRefreshTokenRepository

	txCount int
}

func newMockStore() *mockStore {
	return &mockStore{
		products: &mockProductRepository{
			products:  make(map[uuid.UUID]*domain.Product),
			viewCalls: make(chan uuid.UUID, 16),
		},
		images:        &mockImageRepository{images: make(map[uuid.UUID]*domain.ProductImage)},
		priceHistory:  &mockPriceHistoryRepository{},
		productTypes:  &mockProductTypeRepository{types: make(map[uuid.UUID]*domain.ProductType)},
		users:         &mockUserRepository{users: make(map[string]*domain.User)},
		refreshTokens: &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)},
	}
}

func (m *mockStore) Products() repository.ProductRepository          { return m.products }
func (m *mockStore) Images() repository.ImageRepository              { return m.images }
func (m *mockStore) PriceHistory() repository.PriceHistoryRepository { return m.priceHistory }
func (m *mockStore) ProductTypes() repository.ProductTypeRepository  { return m.productTypes }
func (m *mockStore) Users() repository.UserRepository                { return m.users }
func (m *mockStore) RefreshTokens() repository.RefreshTokenRepository {
	return m.refreshTokens
}

func (m *mockStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	m.txCount++
	return fn(m)
}

// seedProductType registers a product type and returns its id.
func (m *mockStore) seedProductType(name string) uuid.UUID {
	pt := &domain.ProductType{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	m.productTypes.types[pt.ID] = pt
	return pt.ID
}

type mockProductRepository struct {
	products  map[uuid.UUID]*domain.Product
	viewCalls chan uuid.UUID

	createCalls int

	listItems []*domain.ProductListItem
	listTotal int
}

func (m *mockProductRepository) slugTaken(slug string, exceptID uuid.UUID) bool {
	for _, p := range m.products {
		if p.Slug == slug && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.createCalls++
	if m.slugTaken(product.Slug, product.ID) {
		return repository.ErrDuplicateSlug
	}
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	existing, ok := m.products[product.ID]
	if !ok || existing.DeletedAt != nil {
		return repository.ErrProductNotFound
	}
	if m.slugTaken(product.Slug, product.ID) {
		return repository.ErrDuplicateSlug
	}
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if product.DeletedAt != nil && !includeDeleted {
		return nil, repository.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug && p.DeletedAt == nil {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, q *catalog.ListProductsQuery) ([]*domain.ProductListItem, error) {
	return m.listItems, nil
}

func (m *mockProductRepository) Count(ctx context.Context, q *catalog.ListProductsQuery) (int, error) {
	return m.listTotal, nil
}

func (m *mockProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	product, ok := m.products[id]
	if !ok || product.DeletedAt != nil {
		return repository.ErrProductNotFound
	}
	now := time.Now()
	product.DeletedAt = &now
	return nil
}

func (m *mockProductRepository) Restore(ctx context.Context, id uuid.UUID) error {
	product, ok := m.products[id]
	if !ok || product.DeletedAt == nil {
		return repository.ErrProductNotFound
	}
	product.DeletedAt = nil
	return nil
}

func (m *mockProductRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	select {
	case m.viewCalls <- id:
	default:
	}
	return nil
}

type mockImageRepository struct {
	images map[uuid.UUID]*domain.ProductImage
}

func (m *mockImageRepository) Create(ctx context.Context, image *domain.ProductImage) error {
	clone := *image
	m.images[image.ID] = &clone
	return nil
}

func (m *mockImageRepository) Update(ctx context.Context, image *domain.ProductImage) error {
	if _, ok := m.images[image.ID]; !ok {
		return repository.ErrImageNotFound
	}
	clone := *image
	m.images[image.ID] = &clone
	return nil
}

func (m *mockImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.images[id]; !ok {
		return repository.ErrImageNotFound
	}
	delete(m.images, id)
	return nil
}

func (m *mockImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	image, ok := m.images[id]
	if !ok {
		return nil, repository.ErrImageNotFound
	}
	clone := *image
	return &clone, nil
}

func (m *mockImageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	images := []*domain.ProductImage{}
	for _, image := range m.images {
		if image.ProductID == productID {
			clone := *image
			images = append(images, &clone)
		}
	}
	return images, nil
}

func (m *mockImageRepository) ClearPrimary(ctx context.Context, productID uuid.UUID, exceptID *uuid.UUID) error {
	for _, image := range m.images {
		if image.ProductID != productID || !image.IsPrimary {
			continue
		}
		if exceptID != nil && image.ID == *exceptID {
			continue
		}
		image.IsPrimary = false
	}
	return nil
}

type mockPriceHistoryRepository struct {
	entries []*domain.PriceHistory
}

func (m *mockPriceHistoryRepository) Create(ctx context.Context, entry *domain.PriceHistory) error {
	clone := *entry
	m.entries = append(m.entries, &clone)
	return nil
}

func (m *mockPriceHistoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.PriceHistory, error) {
	entries := []*domain.PriceHistory{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].ProductID == productID {
			entries = append(entries, m.entries[i])
		}
	}
	return entries, nil
}

type mockProductTypeRepository struct {
	types map[uuid.UUID]*domain.ProductType
}

func (m *mockProductTypeRepository) Create(ctx context.Context, productType *domain.ProductType) error {
	for _, pt := range m.types {
		if pt.Name == productType.Name {
			return repository.ErrProductTypeExists
		}
	}
	clone := *productType
	m.types[productType.ID] = &clone
	return nil
}

func (m *mockProductTypeRepository) List(ctx context.Context) ([]*domain.ProductType, error) {
	types := []*domain.ProductType{}
	for _, pt := range m.types {
		clone := *pt
		types = append(types, &clone)
	}
	return types, nil
}

func (m *mockProductTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductType, error) {
	pt, ok := m.types[id]
	if !ok {
		return nil, repository.ErrProductTypeNotFound
	}
	clone := *pt
	return &clone, nil
}

type mockUserRepository struct {
	users map[string]*domain.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}
