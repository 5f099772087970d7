package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dukan-pos/internal/domain"
	"dukan-pos/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidRole = errors.New("role must be admin or cashier")
)

// EmployeeService manages staff profiles and their login principals.
// Provisioning a new employee is a two-step saga: create the principal,
// then the profile, with a compensating principal deletion if the
// profile insert fails, so no orphaned login is left behind.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, name, role, email, password string) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, name, role string) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
	GetEmployee(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]*domain.Employee, error)
}

type employeeService struct {
	employeeRepo repository.EmployeeRepository
	userRepo     repository.UserRepository
	logger       *zap.Logger
}

// NewEmployeeService creates a new instance of EmployeeService
func NewEmployeeService(
	employeeRepo repository.EmployeeRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) EmployeeService {
	return &employeeService{
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// CreateEmployee provisions a login principal and a staff profile
func (s *employeeService) CreateEmployee(ctx context.Context, name, role, email, password string) (*domain.Employee, error) {
	if role != domain.RoleAdmin && role != domain.RoleCashier {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create login: %w", err)
	}

	employee := &domain.Employee{
		ID:        uuid.New(),
		Name:      name,
		Role:      role,
		UserID:    user.ID,
		CreatedAt: now,
	}

	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		// Compensate: remove the principal so a failed provisioning
		// leaves nothing behind
		if delErr := s.userRepo.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("Failed to roll back login after profile creation failed",
				zap.String("user_id", user.ID.String()),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to create employee profile: %w", err)
	}

	return employee, nil
}

// UpdateEmployee changes an employee's name and role
func (s *employeeService) UpdateEmployee(ctx context.Context, id uuid.UUID, name, role string) (*domain.Employee, error) {
	if role != domain.RoleAdmin && role != domain.RoleCashier {
		return nil, ErrInvalidRole
	}

	employee, err := s.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	employee.Name = name
	employee.Role = role

	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, err
	}

	return employee, nil
}

// DeleteEmployee removes the staff profile only. The login principal is
// kept: access to app features is revoked without destroying the login.
func (s *employeeService) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	return s.employeeRepo.Delete(ctx, id)
}

// GetEmployee retrieves an employee by ID
func (s *employeeService) GetEmployee(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	return s.employeeRepo.FindByID(ctx, id)
}

// ListEmployees retrieves all employees
func (s *employeeService) ListEmployees(ctx context.Context) ([]*domain.Employee, error) {
	return s.employeeRepo.List(ctx)
}
