package domain

import (
	"time"

	"github.com/google/uuid"
)

// Employee roles
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// Employee represents a staff profile linked to exactly one login principal
type Employee struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
