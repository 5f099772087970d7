package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dukan-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
)

// EmployeeRepository defines the interface for staff profile data access
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	Update(ctx context.Context, employee *domain.Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
}

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

// Create inserts a new employee profile using parameterized queries
func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	query := `
		INSERT INTO employees (id, name, role, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		employee.ID,
		employee.Name,
		employee.Role,
		employee.UserID,
		employee.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

// Update changes an employee's name and role. The user link is fixed at
// creation and never reassigned.
func (r *employeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	query := `
		UPDATE employees
		SET name = $2, role = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, employee.ID, employee.Name, employee.Role)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrEmployeeNotFound
	}

	return nil
}

// Delete removes an employee profile. The linked login principal is
// kept on purpose: deleting the profile revokes app capability without
// destroying the login.
func (r *employeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM employees WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrEmployeeNotFound
	}

	return nil
}

// FindByID retrieves an employee by ID using parameterized queries
func (r *employeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	query := `
		SELECT id, name, role, user_id, created_at
		FROM employees
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByUserID resolves the employee profile for a login principal.
// A principal without a profile gets ErrEmployeeNotFound, which callers
// treat as a blocking precondition failure rather than a crash.
func (r *employeeRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error) {
	query := `
		SELECT id, name, role, user_id, created_at
		FROM employees
		WHERE user_id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

// List retrieves all employees, newest first
func (r *employeeRepository) List(ctx context.Context) ([]*domain.Employee, error) {
	query := `
		SELECT id, name, role, user_id, created_at
		FROM employees
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []*domain.Employee{}
	for rows.Next() {
		employee := &domain.Employee{}
		err := rows.Scan(
			&employee.ID,
			&employee.Name,
			&employee.Role,
			&employee.UserID,
			&employee.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, employee)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, nil
}

func (r *employeeRepository) scanOne(row *sql.Row) (*domain.Employee, error) {
	employee := &domain.Employee{}
	err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Role,
		&employee.UserID,
		&employee.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}

	return employee, nil
}
