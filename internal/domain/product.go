package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents an item in the inventory catalog
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Barcode       string    `json:"barcode" db:"barcode"`
	Category      string    `json:"category" db:"category"`
	PurchasePrice float64   `json:"purchase_price" db:"purchase_price"`
	SalePrice     float64   `json:"sale_price" db:"sale_price"`
	Stock         int       `json:"stock" db:"stock"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
