package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dukan-pos/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSaleNotFound = errors.New("sale not found")

	// ErrInsufficientStock means a line's quantity exceeded the stock
	// read under lock at commit time. The whole sale is rolled back.
	ErrInsufficientStock = errors.New("insufficient stock for sale")
)

// RecentSale is a ledger row with customer and employee names resolved
// at read time. A deleted reference resolves to a nil name, not an
// error; name resolution never fails the batch.
type RecentSale struct {
	ID            uuid.UUID
	TotalAmount   float64
	PaymentMethod string
	CustomerName  *string
	EmployeeName  *string
	CreatedAt     time.Time
}

// SaleRepository owns the durable half of sale completion plus the
// read-only ledger views the dashboard derives from.
type SaleRepository interface {
	// CompleteSale commits a sale as one transaction: it re-checks and
	// decrements stock, inserts the header and line items, and for loan
	// sales raises the customer's balance. All effects land together or
	// not at all. On an idempotency key replay the previously committed
	// sale is returned with its stored items.
	CompleteSale(ctx context.Context, sale *domain.Sale, lines []domain.SaleLine) (*domain.Sale, []domain.SaleItem, error)

	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Sale, error)
	ListItems(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItem, error)
	TotalRevenue(ctx context.Context) (float64, error)
	ListSince(ctx context.Context, since time.Time) ([]*domain.Sale, error)
	RecentSales(ctx context.Context, limit int) ([]*RecentSale, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

// CompleteSale runs the five mutations of sale completion inside a
// single database transaction. The product rows are locked with
// FOR UPDATE before the stock check, so the check and the decrement are
// one serialized unit per product: two cashiers overselling the same
// item cannot both win.
func (r *saleRepository) CompleteSale(ctx context.Context, sale *domain.Sale, lines []domain.SaleLine) (*domain.Sale, []domain.SaleItem, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin sale transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	productIDs := make([]string, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			productIDs = append(productIDs, line.ProductID.String())
		}
	}

	// Lock and re-read current stock and price. The client's cart
	// snapshot is advisory only; this read is the source of truth.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, stock, sale_price
		FROM products
		WHERE id = ANY($1::uuid[])
		FOR UPDATE
	`, productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock products: %w", err)
	}

	type productState struct {
		stock     int
		salePrice float64
	}
	states := make(map[uuid.UUID]productState, len(productIDs))
	for rows.Next() {
		var id uuid.UUID
		var state productState
		if err := rows.Scan(&id, &state.stock, &state.salePrice); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan product state: %w", err)
		}
		states[id] = state
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("error iterating locked products: %w", err)
	}
	rows.Close()

	// Validate every line against current stock before touching anything
	quantities := make(map[uuid.UUID]int, len(productIDs))
	for _, line := range lines {
		quantities[line.ProductID] += line.Quantity
	}
	var total float64
	for id, qty := range quantities {
		state, ok := states[id]
		if !ok {
			return nil, nil, ErrProductNotFound
		}
		if qty > state.stock {
			return nil, nil, ErrInsufficientStock
		}
		total += float64(qty) * state.salePrice
	}

	// Decrement stock for every product by its combined line quantity
	for id, qty := range quantities {
		if _, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2
			WHERE id = $1
		`, id, qty); err != nil {
			return nil, nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	sale.TotalAmount = total

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, employee_id, customer_id, total_amount, payment_method, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sale.ID, sale.EmployeeID, sale.CustomerID, sale.TotalAmount, sale.PaymentMethod, sale.IdempotencyKey, sale.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// A retried request already committed this sale. Return the
			// stored result instead of double-charging.
			existing, lookupErr := r.FindByIdempotencyKey(ctx, sale.IdempotencyKey)
			if lookupErr != nil {
				return nil, nil, fmt.Errorf("failed to load sale for retried key: %w", lookupErr)
			}
			items, lookupErr := r.ListItems(ctx, existing.ID)
			if lookupErr != nil {
				return nil, nil, fmt.Errorf("failed to load items for retried key: %w", lookupErr)
			}
			return existing, items, nil
		}
		if isForeignKeyViolation(err, "customer") {
			return nil, nil, ErrCustomerNotFound
		}
		if isForeignKeyViolation(err, "employee") {
			return nil, nil, ErrEmployeeNotFound
		}
		return nil, nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	items := make([]domain.SaleItem, 0, len(lines))
	for _, line := range lines {
		item := domain.SaleItem{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			PriceAtSale: states[line.ProductID].salePrice,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, quantity, price_at_sale)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, item.SaleID, item.ProductID, item.Quantity, item.PriceAtSale); err != nil {
			return nil, nil, fmt.Errorf("failed to insert sale item: %w", err)
		}
		items = append(items, item)
	}

	if sale.PaymentMethod == domain.PaymentLoan {
		result, err := tx.ExecContext(ctx, `
			UPDATE customers
			SET loan_balance = loan_balance + $2
			WHERE id = $1
		`, sale.CustomerID, sale.TotalAmount)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to raise loan balance: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return nil, nil, ErrCustomerNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	return sale, items, nil
}

// FindByID retrieves a sale header by ID
func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	return r.findOne(ctx, "id", id)
}

// FindByIdempotencyKey retrieves a sale header by its idempotency key
func (r *saleRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Sale, error) {
	return r.findOne(ctx, "idempotency_key", key)
}

func (r *saleRepository) findOne(ctx context.Context, column string, value interface{}) (*domain.Sale, error) {
	if column != "id" && column != "idempotency_key" {
		return nil, fmt.Errorf("unsupported sale lookup column %q", column)
	}

	query := fmt.Sprintf(`
		SELECT id, employee_id, customer_id, total_amount, payment_method, idempotency_key, created_at
		FROM sales
		WHERE %s = $1
	`, column)

	sale := &domain.Sale{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&sale.ID,
		&sale.EmployeeID,
		&sale.CustomerID,
		&sale.TotalAmount,
		&sale.PaymentMethod,
		&sale.IdempotencyKey,
		&sale.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	return sale, nil
}

// ListItems retrieves the line items of a sale
func (r *saleRepository) ListItems(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, quantity, price_at_sale
		FROM sale_items
		WHERE sale_id = $1
	`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	items := []domain.SaleItem{}
	for rows.Next() {
		var item domain.SaleItem
		err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.PriceAtSale)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return items, nil
}

// TotalRevenue sums total_amount over the whole ledger
func (r *saleRepository) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM sales
	`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total revenue: %w", err)
	}
	return total, nil
}

// ListSince retrieves sale headers created at or after the given time,
// oldest first. Used by the dashboard to bucket revenue by local day.
func (r *saleRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, employee_id, customer_id, total_amount, payment_method, idempotency_key, created_at
		FROM sales
		WHERE created_at >= $1
		ORDER BY created_at ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale := &domain.Sale{}
		err := rows.Scan(
			&sale.ID,
			&sale.EmployeeID,
			&sale.CustomerID,
			&sale.TotalAmount,
			&sale.PaymentMethod,
			&sale.IdempotencyKey,
			&sale.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

// RecentSales retrieves the newest sales with display names resolved
// through LEFT JOINs, so rows referencing deleted customers or
// employees still come back, just without a name.
func (r *saleRepository) RecentSales(ctx context.Context, limit int) ([]*RecentSale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.total_amount, s.payment_method, c.name, e.name, s.created_at
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		LEFT JOIN employees e ON e.id = s.employee_id
		ORDER BY s.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sales: %w", err)
	}
	defer rows.Close()

	sales := []*RecentSale{}
	for rows.Next() {
		sale := &RecentSale{}
		var customerName, employeeName sql.NullString
		err := rows.Scan(
			&sale.ID,
			&sale.TotalAmount,
			&sale.PaymentMethod,
			&customerName,
			&employeeName,
			&sale.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent sale: %w", err)
		}
		if customerName.Valid {
			sale.CustomerName = &customerName.String
		}
		if employeeName.Valid {
			sale.EmployeeName = &employeeName.String
		}
		sales = append(sales, sale)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent sales: %w", err)
	}

	return sales, nil
}

// isForeignKeyViolation reports whether err is a Postgres foreign key
// violation (SQLSTATE 23503) on a constraint naming the given relation
func isForeignKeyViolation(err error, relation string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503" &&
		strings.Contains(pgErr.ConstraintName, relation)
}
