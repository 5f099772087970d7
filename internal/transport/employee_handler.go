package transport

import (
	"errors"
	"net/http"

	"dukan-pos/internal/middleware"
	"dukan-pos/internal/repository"
	"dukan-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateEmployeeRequest provisions a staff profile together with its
// login principal
type CreateEmployeeRequest struct {
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin cashier"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateEmployeeRequest edits name and role only
type UpdateEmployeeRequest struct {
	Name string `json:"name" validate:"required"`
	Role string `json:"role" validate:"required,oneof=admin cashier"`
}

// EmployeeHandler handles HTTP requests for staff management
type EmployeeHandler struct {
	employeeService service.EmployeeService
	logger          *zap.Logger
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employeeService service.EmployeeService, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		logger:          logger,
	}
}

// RegisterRoutes registers employee routes, all admin only
func (h *EmployeeHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/employees", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns all employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeService.ListEmployees(r.Context())
	if err != nil {
		h.logger.Error("Failed to list employees", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list employees")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, employees)
}

// Create provisions a new employee and login
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	employee, err := h.employeeService.CreateEmployee(r.Context(), req.Name, req.Role, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to create employee", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create employee")
		return
	}

	h.logger.Info("Employee created",
		zap.String("employee_id", employee.ID.String()),
		zap.String("role", employee.Role),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, employee)
}

// Update edits an employee's name and role
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}

	var req UpdateEmployeeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	employee, err := h.employeeService.UpdateEmployee(r.Context(), id, req.Name, req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "employee not found")
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to update employee", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update employee")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, employee)
}

// Delete removes an employee profile
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid employee ID")
		return
	}

	if err := h.employeeService.DeleteEmployee(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "employee not found")
			return
		}
		h.logger.Error("Failed to delete employee", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete employee")
		return
	}

	h.logger.Info("Employee deleted", zap.String("employee_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}
