package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"pasar/internal/database"
	"pasar/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory database for the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Ana", Email: email, Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createVendor(t *testing.T, db *gorm.DB, email string) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{Name: "Budi", Email: email, Password: "x", StoreName: "Toko Budi"}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

// createProduct lists a product in a fresh shop of the vendor with one variant
// per (price, stock) pair.
func createProduct(t *testing.T, db *gorm.DB, vendorID, name string, variants ...models.ProductVariant) *models.Product {
	t.Helper()
	shop := &models.Shop{VendorID: vendorID, Name: name + " shop"}
	require.NoError(t, db.Create(shop).Error)
	product := &models.Product{VendorID: vendorID, ShopID: shop.ID, Name: name, Images: []string{}, Variants: variants}
	require.NoError(t, db.Create(product).Error)
	return product
}

func variant(name, price string, stock int) models.ProductVariant {
	return models.ProductVariant{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
}

func reload(t *testing.T, db *gorm.DB, v *models.ProductVariant) models.ProductVariant {
	t.Helper()
	var out models.ProductVariant
	require.NoError(t, db.First(&out, "id = ?", v.ID).Error)
	return out
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func total(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// recordingPublisher keeps every published routing key.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}
