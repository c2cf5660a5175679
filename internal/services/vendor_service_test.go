package services

import (
	"context"
	"testing"
	"time"

	"pasar/internal/database"
	"pasar/internal/models"
	"pasar/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowth(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name     string
		current  string
		previous string
		want     int64
	}{
		{"from nothing", "250", "0", 100},
		{"nothing at all", "0", "0", 0},
		{"doubled", "200", "100", 100},
		{"halved", "50", "100", -50},
		{"rounds", "10", "3", 233},
		{"all lost", "0", "80", -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Growth(d(tt.current), d(tt.previous)))
		})
	}
}

func TestNewPeriod(t *testing.T) {
	now := time.Date(2024, time.March, 10, 15, 30, 0, 0, time.FixedZone("WIB", 7*3600))

	week := NewPeriod(RangeWeek, now)
	require.Len(t, week.Buckets, 7)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), week.Start())
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), week.End())
	assert.Equal(t, time.Date(2024, time.February, 26, 0, 0, 0, 0, time.UTC), week.PreviousStart)
	assert.Equal(t, "Mar 10", week.Buckets[6].Label)

	month := NewPeriod(RangeMonth, now)
	require.Len(t, month.Buckets, 30)
	assert.Equal(t, time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), month.Start())

	year := NewPeriod(RangeYear, now)
	require.Len(t, year.Buckets, 12)
	assert.Equal(t, "Apr 2023", year.Buckets[0].Label)
	assert.Equal(t, "Mar 2024", year.Buckets[11].Label)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), year.End())
	assert.Equal(t, time.Date(2022, time.April, 1, 0, 0, 0, 0, time.UTC), year.PreviousStart)

	for i := 1; i < len(month.Buckets); i++ {
		assert.Equal(t, month.Buckets[i-1].End, month.Buckets[i].Start)
	}
}

func TestParseTimeRange(t *testing.T) {
	r, err := ParseTimeRange("")
	require.NoError(t, err)
	assert.Equal(t, RangeWeek, r)

	r, err = ParseTimeRange(" Year ")
	require.NoError(t, err)
	assert.Equal(t, RangeYear, r)

	_, err = ParseTimeRange("decade")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVendorService_Dashboard(t *testing.T) {
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	ctx := context.Background()

	vendor := &models.Vendor{Name: "Budi", Email: "budi@example.com"}
	other := &models.Vendor{Name: "Citra", Email: "citra@example.com"}
	user := &models.User{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, db.Create(vendor).Error)
	require.NoError(t, db.Create(other).Error)
	require.NoError(t, db.Create(user).Error)
	shop := &models.Shop{VendorID: vendor.ID, Name: "Toko"}
	require.NoError(t, db.Create(shop).Error)
	require.NoError(t, db.Create(&models.Product{VendorID: vendor.ID, ShopID: shop.ID, Name: "Shirt"}).Error)

	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 9, 0, 0, 0, time.UTC) }
	orders := []models.Order{
		{VendorID: vendor.ID, UserID: user.ID, Total: decimal.NewFromInt(100), Status: models.OrderDelivered, Base: models.Base{CreatedAt: day(10)}},
		{VendorID: vendor.ID, UserID: user.ID, Total: decimal.NewFromInt(50), Status: models.OrderPending, Base: models.Base{CreatedAt: day(4)}},
		{VendorID: vendor.ID, UserID: user.ID, Total: decimal.NewFromInt(70), Status: models.OrderCancelled, Base: models.Base{CreatedAt: day(9)}},
		// previous week
		{VendorID: vendor.ID, UserID: user.ID, Total: decimal.NewFromInt(100), Status: models.OrderDelivered, Base: models.Base{CreatedAt: day(1)}},
		// outside both periods and another vendor's
		{VendorID: vendor.ID, UserID: user.ID, Total: decimal.NewFromInt(999), Status: models.OrderDelivered, Base: models.Base{CreatedAt: day(11)}},
		{VendorID: other.ID, UserID: user.ID, Total: decimal.NewFromInt(999), Status: models.OrderDelivered, Base: models.Base{CreatedAt: day(10)}},
	}
	require.NoError(t, db.Create(&orders).Error)

	svc := NewVendorService(repositories.NewGORMOrderRepository(db), repositories.NewGORMProductRepository(db), repositories.NewGORMReviewRepository(db))
	svc.now = func() time.Time { return now }

	stats, err := svc.Dashboard(ctx, vendor.ID, RangeWeek)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.True(t, decimal.NewFromInt(150).Equal(stats.TotalRevenue), stats.TotalRevenue.String())
	assert.True(t, decimal.NewFromInt(75).Equal(stats.AverageOrderValue), stats.AverageOrderValue.String())
	assert.Equal(t, int64(50), stats.RevenueGrowth)
	assert.Equal(t, int64(200), stats.OrdersGrowth)
	assert.Equal(t, 1, stats.OrdersByStatus[models.OrderCancelled])
	assert.Equal(t, 0, stats.OrdersByStatus[models.OrderShipped])

	require.Len(t, stats.RevenueSeries, 7)
	assert.True(t, decimal.NewFromInt(50).Equal(stats.RevenueSeries[0].Revenue))
	assert.Equal(t, 1, stats.RevenueSeries[5].Orders)
	assert.True(t, stats.RevenueSeries[5].Revenue.IsZero())
	assert.True(t, decimal.NewFromInt(100).Equal(stats.RevenueSeries[6].Revenue))

	customers, err := svc.Customers(ctx, vendor.ID)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, int64(5), customers[0].OrderCount)
}
