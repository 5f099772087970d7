package service

import (
	"context"
	"fmt"
	"time"

	"dukan-pos/internal/repository"
)

// UnknownName is shown when a sale references a customer or employee
// that has since been deleted. Resolution failures are per row; they
// never fail the whole view.
const UnknownName = "Unknown"

// Stats are the dashboard headline figures, recomputed on every read
type Stats struct {
	Revenue   float64 `json:"revenue"`
	Customers int     `json:"customers"`
	Products  int     `json:"products"`
}

// RevenueBucket is one local-day revenue bucket, [midnight, midnight+24h)
type RevenueBucket struct {
	Day     time.Time `json:"day"`
	Revenue float64   `json:"revenue"`
}

// RecentSaleView is a ledger row prepared for display
type RecentSaleView struct {
	ID            string    `json:"id"`
	TotalAmount   float64   `json:"total_amount"`
	PaymentMethod string    `json:"payment_method"`
	CustomerName  string    `json:"customer_name"`
	EmployeeName  string    `json:"employee_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// DashboardService derives read-only views from the ledger. It never
// mutates anything and keeps no cache: two reads without an intervening
// sale return identical figures.
type DashboardService interface {
	Stats(ctx context.Context) (*Stats, error)
	RevenueSeries(ctx context.Context, days int, loc *time.Location) ([]RevenueBucket, error)
	RecentSales(ctx context.Context, limit int) ([]RecentSaleView, error)
}

type dashboardService struct {
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
}

// NewDashboardService creates a new instance of DashboardService
func NewDashboardService(
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
) DashboardService {
	return &dashboardService{
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
	}
}

// Stats returns total revenue and entity counts
func (s *dashboardService) Stats(ctx context.Context) (*Stats, error) {
	revenue, err := s.saleRepo.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}

	customers, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	return &Stats{Revenue: revenue, Customers: customers, Products: products}, nil
}

// RevenueSeries buckets revenue over the trailing days in the given
// location. Each bucket covers [local midnight, local midnight + 24h);
// days without sales appear with zero revenue.
func (s *dashboardService) RevenueSeries(ctx context.Context, days int, loc *time.Location) ([]RevenueBucket, error) {
	if days < 1 {
		days = 7
	}
	if loc == nil {
		loc = time.Local
	}

	now := time.Now().In(loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	windowStart := todayStart.AddDate(0, 0, -(days - 1))

	sales, err := s.saleRepo.ListSince(ctx, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales for series: %w", err)
	}

	buckets := make([]RevenueBucket, days)
	for i := range buckets {
		buckets[i].Day = windowStart.AddDate(0, 0, i)
	}

	for _, sale := range sales {
		local := sale.CreatedAt.In(loc)
		dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		idx := int(dayStart.Sub(windowStart).Hours() / 24)
		if idx < 0 || idx >= days {
			continue
		}
		buckets[idx].Revenue += sale.TotalAmount
	}

	return buckets, nil
}

// RecentSales returns the newest sales with display names resolved;
// references to deleted rows resolve to the UnknownName placeholder
func (s *dashboardService) RecentSales(ctx context.Context, limit int) ([]RecentSaleView, error) {
	if limit < 1 {
		limit = 5
	}

	rows, err := s.saleRepo.RecentSales(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sales: %w", err)
	}

	views := make([]RecentSaleView, 0, len(rows))
	for _, row := range rows {
		view := RecentSaleView{
			ID:            row.ID.String(),
			TotalAmount:   row.TotalAmount,
			PaymentMethod: row.PaymentMethod,
			CustomerName:  UnknownName,
			EmployeeName:  UnknownName,
			CreatedAt:     row.CreatedAt,
		}
		if row.CustomerName != nil {
			view.CustomerName = *row.CustomerName
		}
		if row.EmployeeName != nil {
			view.EmployeeName = *row.EmployeeName
		}
		views = append(views, view)
	}

	return views, nil
}
