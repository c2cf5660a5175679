package services

import (
	"context"
	"strings"
	"time"

	"pasar/internal/models"
	"pasar/internal/repositories"

	"github.com/shopspring/decimal"
)

// TimeRange selects the dashboard period.
type TimeRange string

const (
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
)

// ParseTimeRange defaults to a week.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeWeek, nil
	case RangeWeek, RangeMonth, RangeYear:
		return r, nil
	}
	return "", invalid("timeRange must be week, month or year")
}

// Bucket is one point of the revenue series, covering [Start, End).
type Bucket struct {
	Label   string          `json:"label"`
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"-"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// Period is the current range split into buckets plus the equal-length range before it.
type Period struct {
	Buckets       []Bucket
	PreviousStart time.Time
}

// Start is the beginning of the current range.
func (p Period) Start() time.Time { return p.Buckets[0].Start }

// End is the exclusive end of the current range.
func (p Period) End() time.Time { return p.Buckets[len(p.Buckets)-1].End }

// NewPeriod splits the range ending with the UTC day (or month, for a year)
// containing now: 7 daily buckets for a week, 30 for a month, 12 monthly for a year.
func NewPeriod(r TimeRange, now time.Time) Period {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var p Period
	switch r {
	case RangeYear:
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		first := month.AddDate(0, -11, 0)
		for i := 0; i < 12; i++ {
			start := first.AddDate(0, i, 0)
			p.Buckets = append(p.Buckets, Bucket{Label: start.Format("Jan 2006"), Start: start, End: start.AddDate(0, 1, 0)})
		}
		p.PreviousStart = first.AddDate(0, -12, 0)
	default:
		days := 7
		if r == RangeMonth {
			days = 30
		}
		first := today.AddDate(0, 0, -(days - 1))
		for i := 0; i < days; i++ {
			start := first.AddDate(0, 0, i)
			p.Buckets = append(p.Buckets, Bucket{Label: start.Format("Jan 02"), Start: start, End: start.AddDate(0, 0, 1)})
		}
		p.PreviousStart = first.AddDate(0, 0, -days)
	}
	for i := range p.Buckets {
		p.Buckets[i].Revenue = decimal.Zero
	}
	return p
}

// Growth is the percentage change from previous to current, rounded to the
// nearest integer. It is 100 when previous is zero and current positive, and 0
// when both are zero.
func Growth(current, previous decimal.Decimal) int64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// DashboardStats is the vendor dashboard for one time range.
type DashboardStats struct {
	TimeRange         TimeRange                  `json:"timeRange"`
	TotalProducts     int64                      `json:"totalProducts"`
	TotalOrders       int                        `json:"totalOrders"`
	TotalRevenue      decimal.Decimal            `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal            `json:"averageOrderValue"`
	RevenueGrowth     int64                      `json:"revenueGrowth"`
	OrdersGrowth      int64                      `json:"ordersGrowth"`
	RevenueSeries     []Bucket                   `json:"revenueSeries"`
	OrdersByStatus    map[models.OrderStatus]int `json:"ordersByStatus"`
}

// VendorService aggregates a vendor's sales, customers and reviews.
type VendorService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	reviews  repositories.ReviewRepository
	now      func() time.Time
}

// NewVendorService creates a new instance of VendorService.
func NewVendorService(orders repositories.OrderRepository, products repositories.ProductRepository, reviews repositories.ReviewRepository) *VendorService {
	return &VendorService{orders: orders, products: products, reviews: reviews, now: time.Now}
}

// Dashboard loads the current and previous period in one query and buckets in memory.
// Revenue ignores cancelled orders; order counts include every status.
func (s *VendorService) Dashboard(ctx context.Context, vendorID string, r TimeRange) (*DashboardStats, error) {
	period := NewPeriod(r, s.now())

	totalProducts, err := s.products.CountByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByVendorBetween(ctx, vendorID, period.PreviousStart, period.End())
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TimeRange:      r,
		TotalProducts:  totalProducts,
		TotalRevenue:   decimal.Zero,
		OrdersByStatus: make(map[models.OrderStatus]int, len(models.OrderStatuses)),
	}
	for _, status := range models.OrderStatuses {
		stats.OrdersByStatus[status] = 0
	}

	prevRevenue, prevOrders, paidOrders := decimal.Zero, 0, 0
	buckets := period.Buckets
	for _, order := range orders {
		created := order.CreatedAt.UTC()
		counted := order.Status != models.OrderCancelled
		if created.Before(period.Start()) {
			prevOrders++
			if counted {
				prevRevenue = prevRevenue.Add(order.Total)
			}
			continue
		}
		for i := range buckets {
			if created.Before(buckets[i].Start) || !created.Before(buckets[i].End) {
				continue
			}
			buckets[i].Orders++
			if counted {
				buckets[i].Revenue = buckets[i].Revenue.Add(order.Total)
			}
			break
		}
		stats.TotalOrders++
		stats.OrdersByStatus[order.Status]++
		if counted {
			paidOrders++
			stats.TotalRevenue = stats.TotalRevenue.Add(order.Total)
		}
	}

	stats.AverageOrderValue = decimal.Zero
	if paidOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(paidOrders))).Round(2)
	}
	stats.RevenueGrowth = Growth(stats.TotalRevenue, prevRevenue)
	stats.OrdersGrowth = Growth(decimal.NewFromInt(int64(stats.TotalOrders)), decimal.NewFromInt(int64(prevOrders)))
	stats.RevenueSeries = buckets
	return stats, nil
}

// Customers lists the users who ordered from the vendor, most orders first.
func (s *VendorService) Customers(ctx context.Context, vendorID string) ([]repositories.CustomerSummary, error) {
	return s.orders.Customers(ctx, vendorID)
}

// Reviews lists reviews on the vendor's products, newest first.
func (s *VendorService) Reviews(ctx context.Context, vendorID string) ([]models.Review, error) {
	return s.reviews.ListByVendor(ctx, vendorID)
}
