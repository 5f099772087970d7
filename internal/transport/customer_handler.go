package transport

import (
	"errors"
	"net/http"
	"time"

	"dukan-pos/internal/domain"
	"dukan-pos/internal/middleware"
	"dukan-pos/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerRequest represents the create/update customer payload
type CustomerRequest struct {
	Name        string  `json:"name" validate:"required"`
	Phone       string  `json:"phone"`
	Address     string  `json:"address"`
	LoanBalance float64 `json:"loan_balance"`
}

// CustomerListResponse represents a paginated customer list
type CustomerListResponse struct {
	Customers []*domain.Customer `json:"customers"`
	Total     int                `json:"total"`
	Page      int                `json:"page"`
	PageSize  int                `json:"page_size"`
}

// CustomerHandler handles HTTP requests for customers
type CustomerHandler struct {
	customerRepo repository.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerRepo repository.CustomerRepository, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers customer routes. Cashiers search customers
// to attach one to a sale; mutations are admin only.
func (h *CustomerHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns a paginated customer page
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	customers, total, err := h.customerRepo.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CustomerListResponse{
		Customers: customers,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	})
}

// Search finds customers by name or phone
func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	query := r.URL.Query().Get("q")

	customers, total, err := h.customerRepo.Search(r.Context(), query, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to search customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search customers")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CustomerListResponse{
		Customers: customers,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	})
}

// Get returns a single customer
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	customer, err := h.customerRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to get customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

// Create adds a new customer
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customer := &domain.Customer{
		ID:          uuid.New(),
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		LoanBalance: req.LoanBalance,
		CreatedAt:   time.Now(),
	}

	if err := h.customerRepo.Create(r.Context(), customer); err != nil {
		h.logger.Error("Failed to create customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	h.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, customer)
}

// Update edits an existing customer, including manual loan balance edits
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	var req CustomerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customer := &domain.Customer{
		ID:          id,
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		LoanBalance: req.LoanBalance,
	}

	if err := h.customerRepo.Update(r.Context(), customer); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to update customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update customer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

// Delete removes a customer
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	if err := h.customerRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("Failed to delete customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}

	h.logger.Info("Customer deleted", zap.String("customer_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "customer deleted"})
}
