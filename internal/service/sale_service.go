package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dukan-pos/internal/domain"
	"dukan-pos/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptySale            = errors.New("sale has no line items")
	ErrInvalidQuantity      = errors.New("line item quantity must be at least 1")
	ErrInvalidPaymentMethod = errors.New("payment method must be cash or loan")
	ErrLoanRequiresCustomer = errors.New("loan sale requires a customer")
)

// CompleteSaleInput carries everything a cashier submits to turn a cart
// into a committed sale. Prices never travel in: they are resolved from
// current product state inside the commit.
type CompleteSaleInput struct {
	EmployeeID     uuid.UUID
	CustomerID     *uuid.UUID
	PaymentMethod  string
	Lines          []domain.SaleLine
	IdempotencyKey string
}

// SaleResult is the outcome of a committed sale
type SaleResult struct {
	Sale  *domain.Sale
	Items []domain.SaleItem
}

// SaleService is the single entry point that turns a finalized cart
// into durable history
type SaleService interface {
	CompleteSale(ctx context.Context, input CompleteSaleInput) (*SaleResult, error)
	GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, []domain.SaleItem, error)
}

type saleService struct {
	saleRepo     repository.SaleRepository
	employeeRepo repository.EmployeeRepository
}

// NewSaleService creates a new instance of SaleService
func NewSaleService(saleRepo repository.SaleRepository, employeeRepo repository.EmployeeRepository) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		employeeRepo: employeeRepo,
	}
}

// CompleteSale validates the request, then hands it to the sale
// repository's atomic commit. All validation happens before any durable
// write is attempted; once the commit starts it runs to completion or
// rolls back as a whole, so the context is only consulted here at entry.
func (s *saleService) CompleteSale(ctx context.Context, input CompleteSaleInput) (*SaleResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(input.Lines) == 0 {
		return nil, ErrEmptySale
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}
	if input.PaymentMethod != domain.PaymentCash && input.PaymentMethod != domain.PaymentLoan {
		return nil, ErrInvalidPaymentMethod
	}
	if input.PaymentMethod == domain.PaymentLoan && input.CustomerID == nil {
		return nil, ErrLoanRequiresCustomer
	}

	// Resolve the employee once, not per line
	if _, err := s.employeeRepo.FindByID(ctx, input.EmployeeID); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve employee: %w", err)
	}

	key := input.IdempotencyKey
	if key == "" {
		// Without a client key each attempt is its own sale; dedup only
		// applies when the client supplies one.
		key = uuid.New().String()
	}

	employeeID := input.EmployeeID
	sale := &domain.Sale{
		ID:             uuid.New(),
		EmployeeID:     &employeeID,
		CustomerID:     input.CustomerID,
		PaymentMethod:  input.PaymentMethod,
		IdempotencyKey: key,
		CreatedAt:      time.Now().UTC(),
	}

	committed, items, err := s.saleRepo.CompleteSale(ctx, sale, input.Lines)
	if err != nil {
		return nil, err
	}

	return &SaleResult{Sale: committed, Items: items}, nil
}

// GetSale retrieves a committed sale with its line items
func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, []domain.SaleItem, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.saleRepo.ListItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sale, items, nil
}
