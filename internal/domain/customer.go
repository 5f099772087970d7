package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a customer with an optional running credit balance.
// LoanBalance is positive when the customer owes the business.
type Customer struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Phone       string    `json:"phone" db:"phone"`
	Address     string    `json:"address" db:"address"`
	LoanBalance float64   `json:"loan_balance" db:"loan_balance"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
