package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func createTestProductType(t *testing.T, name string) uuid.UUID {
	t.Helper()
	productType := &domain.ProductType{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := NewProductTypeRepository(testDB).Create(context.Background(), productType); err != nil {
		t.Fatalf("failed to create product type: %v", err)
	}
	return productType.ID
}

func newTestProduct(typeID uuid.UUID, slug, price string) *domain.Product {
	now := time.Now()
	return &domain.Product{
		ID:            uuid.New(),
		Title:         domain.LocalizedText{domain.LangSpanish: "Camiseta", domain.LangEnglish: "Tee"},
		Slug:          slug,
		Price:         decimal.RequireFromString(price),
		ProductTypeID: typeID,
		Color:         "negro",
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestProductRepository_CreateDuplicateSlug(t *testing.T) {
	truncateCatalog(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	typeID := createTestProductType(t, "camisetas")

	if err := repo.Create(ctx, newTestProduct(typeID, "camiseta", "19.90")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	err := repo.Create(ctx, newTestProduct(typeID, "camiseta", "29.90"))
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestProductRepository_SlugCollidesWithSoftDeletedRow(t *testing.T) {
	truncateCatalog(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	typeID := createTestProductType(t, "camisetas")

	deleted := newTestProduct(typeID, "camiseta", "19.90")
	if err := repo.Create(ctx, deleted); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.SoftDelete(ctx, deleted.ID); err != nil {
		t.Fatalf("soft-delete failed: %v", err)
	}

	// The constraint spans deleted rows, so the slug stays taken.
	err := repo.Create(ctx, newTestProduct(typeID, "camiseta", "29.90"))
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug against soft-deleted row, got %v", err)
	}
}

func TestProductRepository_FindByIDSoftDeleteVisibility(t *testing.T) {
	truncateCatalog(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	typeID := createTestProductType(t, "camisetas")

	product := newTestProduct(typeID, "camiseta", "19.90")
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.SoftDelete(ctx, product.ID); err != nil {
		t.Fatalf("soft-delete failed: %v", err)
	}

	if _, err := repo.FindByID(ctx, product.ID, false); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("public read of deleted product should be not found, got %v", err)
	}

	found, err := repo.FindByID(ctx, product.ID, true)
	if err != nil {
		t.Fatalf("admin read of deleted product failed: %v", err)
	}
	if found.DeletedAt == nil {
		t.Error("deleted_at should be set on the returned row")
	}

	if _, err := repo.FindBySlug(ctx, "camiseta"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("slug read of deleted product should be not found, got %v", err)
	}
}

func TestProductRepository_SoftDeleteAndRestoreRowGuards(t *testing.T) {
	truncateCatalog(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	typeID := createTestProductType(t, "camisetas")

	product := newTestProduct(typeID, "camiseta", "19.90")
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.Restore(ctx, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("restoring a live product should be not found, got %v", err)
	}
	if err := repo.SoftDelete(ctx, product.ID); err != nil {
		t.Fatalf("soft-delete failed: %v", err)
	}
	if err := repo.SoftDelete(ctx, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("double soft-delete should be not found, got %v", err)
	}
	if err := repo.Restore(ctx, product.ID); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	restored, err := repo.FindByID(ctx, product.ID, false)
	if err != nil {
		t.Fatalf("restored product should be publicly visible: %v", err)
	}
	if restored.DeletedAt != nil {
		t.Error("restore should clear deleted_at")
	}
}

func TestProductRepository_UpdateSkipsSoftDeletedRows(t *testing.T) {
	truncateCatalog(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	typeID := createTestProductType(t, "camisetas")

	product := newTestProduct(typeID, "camiseta", "19.90")
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.SoftDelete(ctx, product.ID); err != nil {
		t.Fatalf("soft-delete failed: %v", err)
	}

	product.Color = "rojo"
	if err := repo.Update(ctx, product); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("updating a deleted product should be not found, got %v", err)
	}
}

func TestProductRepository_ListFiltersAndPagination(t *testing.T) {
	truncateCatalog(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	shirts := createTestProductType(t, "camisetas")
	pants := createTestProductType(t, "pantalones")

	for i := 0; i < 5; i++ {
		p := newTestProduct(shirts, fmt.Sprintf("camiseta-%d", i), fmt.Sprintf("%d.00", 10+i*10))
		p.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	inactive := newTestProduct(pants, "pantalon", "99.00")
	inactive.Title = domain.LocalizedText{domain.LangSpanish: "Pantalón"}
	inactive.IsActive = false
	if err := repo.Create(ctx, inactive); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	deleted := newTestProduct(pants, "pantalon-viejo", "5.00")
	deleted.Title = domain.LocalizedText{domain.LangSpanish: "Pantalón Viejo"}
	if err := repo.Create(ctx, deleted); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.SoftDelete(ctx, deleted.ID); err != nil {
		t.Fatalf("soft-delete failed: %v", err)
	}

	t.Run("deleted rows are excluded by default", func(t *testing.T) {
		q, _ := catalog.ValidateListProducts(&catalog.ListProductsInput{})
		total, err := repo.Count(ctx, q)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if total != 6 {
			t.Errorf("count = %d, want 6", total)
		}
	})

	t.Run("include_deleted widens the set", func(t *testing.T) {
		q, _ := catalog.ValidateListProducts(&catalog.ListProductsInput{IncludeSoftDeleted: true})
		total, err := repo.Count(ctx, q)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if total != 7 {
			t.Errorf("count = %d, want 7", total)
		}
	})

	t.Run("filter by type and active flag", func(t *testing.T) {
		q, verr := catalog.ValidateListProducts(&catalog.ListProductsInput{
			ProductTypeID: pants.String(),
			IsActive:      "false",
		})
		if verr != nil {
			t.Fatalf("unexpected validation error: %v", verr)
		}
		items, err := repo.List(ctx, q)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(items) != 1 || items[0].Slug != "pantalon" {
			t.Errorf("expected only the inactive pantalon, got %d items", len(items))
		}
	})

	t.Run("price range", func(t *testing.T) {
		q, _ := catalog.ValidateListProducts(&catalog.ListProductsInput{
			MinPrice: "20",
			MaxPrice: "40",
		})
		items, err := repo.List(ctx, q)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(items) != 3 {
			t.Errorf("expected 3 products between 20 and 40, got %d", len(items))
		}
	})

	t.Run("sort by price ascending with paging", func(t *testing.T) {
		q, _ := catalog.ValidateListProducts(&catalog.ListProductsInput{
			SortBy:        "price",
			SortDirection: "asc",
			Page:          "2",
			Limit:         "2",
		})
		items, err := repo.List(ctx, q)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected a full page of 2, got %d", len(items))
		}
		if items[0].Price.GreaterThan(items[1].Price) {
			t.Error("page not sorted ascending by price")
		}
		// Page 1 holds 10.00 and 20.00, so page 2 starts at 30.00.
		if !items[0].Price.Equal(decimal.RequireFromString("30.00")) {
			t.Errorf("page 2 should start at 30.00, got %s", items[0].Price)
		}
	})

	t.Run("search matches localized titles", func(t *testing.T) {
		q, _ := catalog.ValidateListProducts(&catalog.ListProductsInput{Search: "camiseta"})
		total, err := repo.Count(ctx, q)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if total != 5 {
			t.Errorf("search count = %d, want 5", total)
		}
	})
}

func TestProductRepository_ListCarriesPrimaryImage(t *testing.T) {
	truncateCatalog(t)
	products := NewProductRepository(testDB)
	images := NewImageRepository(testDB)
	ctx := context.Background()
	typeID := createTestProductType(t, "camisetas")

	withImage := newTestProduct(typeID, "camiseta", "19.90")
	bare := newTestProduct(typeID, "pantalon", "29.90")
	for _, p := range []*domain.Product{withImage, bare} {
		if err := products.Create(ctx, p); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	secondary := &domain.ProductImage{
		ID: uuid.New(), ProductID: withImage.ID,
		URL: "https://example.com/b.jpg", CreatedAt: time.Now(),
	}
	primary := &domain.ProductImage{
		ID: uuid.New(), ProductID: withImage.ID,
		URL: "https://example.com/a.jpg", IsPrimary: true, CreatedAt: time.Now(),
	}
	for _, img := range []*domain.ProductImage{secondary, primary} {
		if err := images.Create(ctx, img); err != nil {
			t.Fatalf("image create failed: %v", err)
		}
	}

	q, _ := catalog.ValidateListProducts(&catalog.ListProductsInput{})
	items, err := products.List(ctx, q)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	bySlug := map[string]*domain.ProductListItem{}
	for _, item := range items {
		bySlug[item.Slug] = item
	}

	got := bySlug["camiseta"]
	if got == nil || got.PrimaryImage == nil {
		t.Fatal("product with a primary image should carry it in the listing")
	}
	if got.PrimaryImage.ID != primary.ID {
		t.Errorf("wrong image attached: got %s, want %s", got.PrimaryImage.ID, primary.ID)
	}
	if bySlug["pantalon"] == nil || bySlug["pantalon"].PrimaryImage != nil {
		t.Error("product without a primary image should carry none")
	}
}

func TestImageRepository_ClearPrimary(t *testing.T) {
	truncateCatalog(t)
	products := NewProductRepository(testDB)
	images := NewImageRepository(testDB)
	ctx := context.Background()
	typeID := createTestProductType(t, "camisetas")

	product := newTestProduct(typeID, "camiseta", "19.90")
	if err := products.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first := &domain.ProductImage{
		ID: uuid.New(), ProductID: product.ID,
		URL: "https://example.com/a.jpg", IsPrimary: true, CreatedAt: time.Now(),
	}
	second := &domain.ProductImage{
		ID: uuid.New(), ProductID: product.ID,
		URL: "https://example.com/b.jpg", IsPrimary: true, CreatedAt: time.Now(),
	}
	if err := images.Create(ctx, first); err != nil {
		t.Fatalf("image create failed: %v", err)
	}
	if err := images.ClearPrimary(ctx, product.ID, nil); err != nil {
		t.Fatalf("clear primary failed: %v", err)
	}
	if err := images.Create(ctx, second); err != nil {
		t.Fatalf("image create failed: %v", err)
	}

	if err := images.ClearPrimary(ctx, product.ID, &second.ID); err != nil {
		t.Fatalf("clear primary with exception failed: %v", err)
	}

	all, err := images.ListByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, img := range all {
		if img.ID == second.ID && !img.IsPrimary {
			t.Error("excepted image should keep its primary flag")
		}
		if img.ID == first.ID && img.IsPrimary {
			t.Error("other images should have been cleared")
		}
	}
}

func TestPriceHistoryRepository_NewestFirst(t *testing.T) {
	truncateCatalog(t)
	products := NewProductRepository(testDB)
	history := NewPriceHistoryRepository(testDB)
	ctx := context.Background()
	typeID := createTestProductType(t, "camisetas")

	product := newTestProduct(typeID, "camiseta", "19.90")
	if err := products.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	for i, price := range []string{"19.90", "24.90", "29.90"} {
		entry := &domain.PriceHistory{
			ID:        uuid.New(),
			ProductID: product.ID,
			Price:     decimal.RequireFromString(price),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := history.Create(ctx, entry); err != nil {
			t.Fatalf("history create failed: %v", err)
		}
	}

	entries, err := history.ListByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !entries[0].Price.Equal(decimal.RequireFromString("29.90")) {
		t.Errorf("newest entry should come first, got %s", entries[0].Price)
	}
}

func TestProperty_ProductRoundTripPreservesAttributes(t *testing.T) {
	truncateCatalog(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()
	typeID := createTestProductType(t, "camisetas")

	properties := gopter.NewProperties(nil)

	properties.Property("stored products come back with identical attributes", prop.ForAll(
		func(slug string, titleES string, color string, cents int, sizes []string) bool {
			price := decimal.New(int64(cents), -2)
			now := time.Now()
			product := &domain.Product{
				ID:             uuid.New(),
				Title:          domain.LocalizedText{domain.LangSpanish: titleES},
				Slug:           slug,
				Price:          price,
				AvailableSizes: domain.StringList(sizes),
				ProductTypeID:  typeID,
				Color:          color,
				IsActive:       true,
				CreatedAt:      now,
				UpdatedAt:      now,
			}

			if err := repo.Create(ctx, product); err != nil {
				if errors.Is(err, ErrDuplicateSlug) {
					return true
				}
				t.Logf("FAIL: create failed: %v", err)
				return false
			}
			defer func() { _, _ = testDB.Exec("DELETE FROM products WHERE id = $1", product.ID) }()

			found, err := repo.FindBySlug(ctx, slug)
			if err != nil {
				t.Logf("FAIL: find by slug failed: %v", err)
				return false
			}

			if found.Title.Spanish() != titleES {
				t.Logf("FAIL: title mismatch: %q vs %q", found.Title.Spanish(), titleES)
				return false
			}
			if !found.Price.Equal(price) {
				t.Logf("FAIL: price mismatch: %s vs %s", found.Price, price)
				return false
			}
			if found.Color != color {
				t.Logf("FAIL: color mismatch: %q vs %q", found.Color, color)
				return false
			}
			if len(found.AvailableSizes) != len(sizes) {
				t.Logf("FAIL: sizes mismatch: %v vs %v", found.AvailableSizes, sizes)
				return false
			}
			return true
		},
		gen.RegexMatch(`[a-z]{3,10}(-[a-z0-9]{1,8}){0,3}`),
		gen.RegexMatch(`[A-ZÁÉÍÓÚÑ][a-záéíóúñ]{2,20}`),
		gen.OneConstOf("negro", "blanco", "rojo", "azul"),
		gen.IntRange(1, 99999),
		gen.SliceOfN(3, gen.OneConstOf("S", "M", "L", "XL")),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
