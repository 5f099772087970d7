package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment methods
const (
	PaymentCash = "cash"
	PaymentLoan = "loan"
)

// Sale represents a committed transaction. Sales are immutable once
// written; there is no update or void path. Employee and customer
// references go nil when the referenced row is later deleted; the
// ledger row itself stays.
type Sale struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	EmployeeID     *uuid.UUID `json:"employee_id,omitempty" db:"employee_id"`
	CustomerID     *uuid.UUID `json:"customer_id,omitempty" db:"customer_id"`
	TotalAmount    float64    `json:"total_amount" db:"total_amount"`
	PaymentMethod  string     `json:"payment_method" db:"payment_method"`
	IdempotencyKey string     `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// SaleItem is a single line of a sale. PriceAtSale is captured at
// commit time; later product price edits never affect it.
type SaleItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	SaleID      uuid.UUID `json:"sale_id" db:"sale_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	PriceAtSale float64   `json:"price_at_sale" db:"price_at_sale"`
}

// SaleLine is the requested portion of a line item before commit.
// Price and availability are resolved from current product state
// inside the commit, never from the client.
type SaleLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}
