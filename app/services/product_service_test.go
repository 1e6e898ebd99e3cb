package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/config"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/storage"
)

func newProductFixture(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg, err := config.FromMap(map[string]string{
		"STORAGE_LOCAL_ROOT": t.TempDir(),
		"STORAGE_URL":        "http://localhost:8080/storage",
	})
	require.NoError(t, err)
	disk, err := storage.New(cfg)
	require.NoError(t, err)

	return NewProductService(repositories.NewProductRepository(db), disk), db
}

func TestProductCreateAndGet(t *testing.T) {
	svc, _ := newProductFixture(t)

	created, err := svc.Create(context.Background(), ProductInput{
		SKU:   "SKU-1",
		Name:  "Widget",
		Price: decimal.RequireFromString("12.50"),
		Stock: 7,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.50")))
}

func TestProductCreateUnknownCategory(t *testing.T) {
	svc, _ := newProductFixture(t)

	missing := uint(42)
	_, err := svc.Create(context.Background(), ProductInput{
		SKU:        "SKU-1",
		Name:       "Widget",
		Price:      decimal.NewFromInt(1),
		CategoryID: &missing,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestProductPartialUpdate(t *testing.T) {
	svc, db := newProductFixture(t)
	product := createTestProduct(t, db, "SKU-1", "Widget", "10.00", 5)

	newName := "Widget Pro"
	newStock := 9
	updated, err := svc.Update(context.Background(), product.ID, ProductUpdate{
		Name:  &newName,
		Stock: &newStock,
	})
	require.NoError(t, err)

	assert.Equal(t, "Widget Pro", updated.Name)
	assert.Equal(t, 9, updated.Stock)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("10.00")), "untouched fields keep their value")
}

func TestProductUpdateRejectsNegatives(t *testing.T) {
	svc, db := newProductFixture(t)
	product := createTestProduct(t, db, "SKU-1", "Widget", "10.00", 5)

	bad := -1
	_, err := svc.Update(context.Background(), product.ID, ProductUpdate{Stock: &bad})
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))

	price := decimal.RequireFromString("-0.01")
	_, err = svc.Update(context.Background(), product.ID, ProductUpdate{Price: &price})
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestProductDelete(t *testing.T) {
	svc, db := newProductFixture(t)
	product := createTestProduct(t, db, "SKU-1", "Widget", "10.00", 5)

	require.NoError(t, svc.Delete(context.Background(), product.ID))

	_, err := svc.Get(context.Background(), product.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	err = svc.Delete(context.Background(), product.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestProductListFilters(t *testing.T) {
	svc, db := newProductFixture(t)
	createTestProduct(t, db, "SKU-1", "Blue Widget", "10.00", 5)
	createTestProduct(t, db, "SKU-2", "Red Widget", "30.00", 5)
	createTestProduct(t, db, "SKU-3", "Gadget", "20.00", 5)

	bySearch, err := svc.List(context.Background(), repositories.ProductFilter{Search: "Widget"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)

	byPrice, err := svc.List(context.Background(), repositories.ProductFilter{MinPrice: 15, MaxPrice: 25})
	require.NoError(t, err)
	require.Len(t, byPrice, 1)
	assert.Equal(t, "Gadget", byPrice[0].Name)

	paged, err := svc.List(context.Background(), repositories.ProductFilter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
}

func TestAttachImageSetsURL(t *testing.T) {
	svc, db := newProductFixture(t)
	product := createTestProduct(t, db, "SKU-1", "Widget", "10.00", 5)

	updated, err := svc.AttachImage(context.Background(), product.ID, "cover.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Contains(t, updated.ImageURL, "http://localhost:8080/storage/products/")
	assert.True(t, strings.HasSuffix(updated.ImageURL, ".png"))

	_, err = svc.AttachImage(context.Background(), product.ID, "script.sh", strings.NewReader("#!/bin/sh"))
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestCategories(t *testing.T) {
	svc, _ := newProductFixture(t)

	created, err := svc.CreateCategory(context.Background(), "Electronics", "Gadgets")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	list, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Electronics", list[0].Name)
}
