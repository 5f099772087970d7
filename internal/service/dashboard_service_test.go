package service

import (
	"context"
	"testing"
	"time"

	"dukan-pos/internal/domain"

	"github.com/google/uuid"
)

type dashboardFixture struct {
	service      DashboardService
	saleRepo     *mockSaleRepository
	productRepo  *mockProductRepository
	customerRepo *mockCustomerRepository
	employeeRepo *mockEmployeeRepository
}

func newDashboardFixture() *dashboardFixture {
	productRepo := newMockProductRepository()
	customerRepo := newMockCustomerRepository()
	employeeRepo := newMockEmployeeRepository()
	saleRepo := newMockSaleRepository(productRepo, customerRepo, employeeRepo)

	return &dashboardFixture{
		service:      NewDashboardService(saleRepo, customerRepo, productRepo),
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		employeeRepo: employeeRepo,
	}
}

func (f *dashboardFixture) recordSale(total float64, createdAt time.Time, customerID, employeeID *uuid.UUID) *domain.Sale {
	sale := &domain.Sale{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		CustomerID:     customerID,
		TotalAmount:    total,
		PaymentMethod:  domain.PaymentCash,
		IdempotencyKey: uuid.New().String(),
		CreatedAt:      createdAt,
	}
	f.saleRepo.sales[sale.ID] = sale
	f.saleRepo.byKey[sale.IdempotencyKey] = sale.ID
	return sale
}

func TestStats(t *testing.T) {
	f := newDashboardFixture()
	ctx := context.Background()

	f.productRepo.products[uuid.New()] = &domain.Product{ID: uuid.New()}
	f.customerRepo.customers[uuid.New()] = &domain.Customer{ID: uuid.New()}
	f.recordSale(1500, time.Now(), nil, nil)
	f.recordSale(2500, time.Now(), nil, nil)

	stats, err := f.service.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	if stats.Revenue != 4000 {
		t.Errorf("expected revenue 4000, got %f", stats.Revenue)
	}
	if stats.Customers != 1 || stats.Products != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
}

func TestStats_ReadsAreIdempotent(t *testing.T) {
	f := newDashboardFixture()
	ctx := context.Background()
	f.recordSale(1500, time.Now(), nil, nil)

	first, err := f.service.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	second, err := f.service.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	if *first != *second {
		t.Errorf("two reads without a sale in between differ: %+v vs %+v", first, second)
	}
}

func TestRevenueSeries(t *testing.T) {
	f := newDashboardFixture()
	ctx := context.Background()
	loc := time.UTC

	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)

	f.recordSale(1000, today, nil, nil)
	f.recordSale(500, today.AddDate(0, 0, -1), nil, nil)
	f.recordSale(250, today.AddDate(0, 0, -8), nil, nil) // outside the window

	series, err := f.service.RevenueSeries(ctx, 7, loc)
	if err != nil {
		t.Fatalf("RevenueSeries returned error: %v", err)
	}

	if len(series) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(series))
	}
	if series[6].Revenue != 1000 {
		t.Errorf("expected 1000 in today's bucket, got %f", series[6].Revenue)
	}
	if series[5].Revenue != 500 {
		t.Errorf("expected 500 in yesterday's bucket, got %f", series[5].Revenue)
	}

	var windowTotal float64
	for _, bucket := range series {
		windowTotal += bucket.Revenue
	}
	if windowTotal != 1500 {
		t.Errorf("sale outside the window leaked in: %f", windowTotal)
	}
}

func TestRevenueSeries_EmptyDaysAreZero(t *testing.T) {
	f := newDashboardFixture()
	ctx := context.Background()

	series, err := f.service.RevenueSeries(ctx, 7, time.UTC)
	if err != nil {
		t.Fatalf("RevenueSeries returned error: %v", err)
	}

	if len(series) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(series))
	}
	for i, bucket := range series {
		if bucket.Revenue != 0 {
			t.Errorf("bucket %d has nonzero revenue %f", i, bucket.Revenue)
		}
	}
}

func TestRecentSales_UnknownNames(t *testing.T) {
	f := newDashboardFixture()
	ctx := context.Background()

	customer := &domain.Customer{ID: uuid.New(), Name: "Budi"}
	f.customerRepo.customers[customer.ID] = customer
	employee := &domain.Employee{ID: uuid.New(), Name: "Siti"}
	f.employeeRepo.employees[employee.ID] = employee

	deletedCustomerID := uuid.New()
	deletedEmployeeID := uuid.New()

	f.recordSale(1000, time.Now(), &customer.ID, &employee.ID)
	f.recordSale(2000, time.Now().Add(time.Minute), &deletedCustomerID, &deletedEmployeeID)

	views, err := f.service.RecentSales(ctx, 5)
	if err != nil {
		t.Fatalf("RecentSales returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(views))
	}

	// Newest first: the sale with dangling references
	if views[0].CustomerName != UnknownName || views[0].EmployeeName != UnknownName {
		t.Errorf("dangling references should resolve to %q: %+v", UnknownName, views[0])
	}
	if views[1].CustomerName != "Budi" || views[1].EmployeeName != "Siti" {
		t.Errorf("live references should resolve to names: %+v", views[1])
	}
}

func TestRecentSales_LimitRespected(t *testing.T) {
	f := newDashboardFixture()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		f.recordSale(100, time.Now().Add(time.Duration(i)*time.Second), nil, nil)
	}

	views, err := f.service.RecentSales(ctx, 5)
	if err != nil {
		t.Fatalf("RecentSales returned error: %v", err)
	}
	if len(views) != 5 {
		t.Errorf("expected 5 rows, got %d", len(views))
	}
}
