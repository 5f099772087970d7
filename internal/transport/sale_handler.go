package transport

import (
	"errors"
	"net/http"

	"dukan-pos/internal/domain"
	"dukan-pos/internal/middleware"
	"dukan-pos/internal/repository"
	"dukan-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleLineRequest is one requested line item. Only identity and
// quantity travel in; price is resolved server-side at commit.
type SaleLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// CompleteSaleRequest represents the sale completion payload
type CompleteSaleRequest struct {
	CustomerID     *string           `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	PaymentMethod  string            `json:"payment_method" validate:"required,oneof=cash loan"`
	IdempotencyKey string            `json:"idempotency_key" validate:"required"`
	Items          []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemResponse represents one committed line item
type SaleItemResponse struct {
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	PriceAtSale float64 `json:"price_at_sale"`
}

// CompleteSaleResponse represents the committed sale
type CompleteSaleResponse struct {
	ID            string             `json:"id"`
	TotalAmount   float64            `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	Items         []SaleItemResponse `json:"items"`
}

// SaleHandler handles HTTP requests for sale completion
type SaleHandler struct {
	saleService service.SaleService
	logger      *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// RegisterRoutes registers all sale routes. Any authenticated employee
// can complete a sale.
func (h *SaleHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CompleteSale)
		r.Get("/{id}", h.GetSale)
	})
}

// CompleteSale handles the atomic sale commit
func (h *SaleHandler) CompleteSale(w http.ResponseWriter, r *http.Request) {
	var req CompleteSaleRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Sale validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	employeeIDStr, ok := middleware.GetEmployeeID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	employeeID, err := uuid.Parse(employeeIDStr)
	if err != nil {
		h.logger.Error("Invalid employee ID in token", zap.Error(err))
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	input := service.CompleteSaleInput{
		EmployeeID:     employeeID,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
	}

	if req.CustomerID != nil {
		customerID, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
			return
		}
		input.CustomerID = &customerID
	}

	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
			return
		}
		input.Lines = append(input.Lines, domain.SaleLine{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	result, err := h.saleService.CompleteSale(r.Context(), input)
	if err != nil {
		h.respondSaleError(w, err)
		return
	}

	h.logger.Info("Sale completed",
		zap.String("sale_id", result.Sale.ID.String()),
		zap.String("employee_id", employeeID.String()),
		zap.String("payment_method", result.Sale.PaymentMethod),
		zap.Float64("total", result.Sale.TotalAmount),
	)

	response := CompleteSaleResponse{
		ID:            result.Sale.ID.String(),
		TotalAmount:   result.Sale.TotalAmount,
		PaymentMethod: result.Sale.PaymentMethod,
	}
	for _, item := range result.Items {
		response.Items = append(response.Items, SaleItemResponse{
			ProductID:   item.ProductID.String(),
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
		})
	}

	middleware.RespondWithJSON(w, http.StatusCreated, response)
}

// GetSale returns a committed sale with its items
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale ID")
		return
	}

	sale, items, err := h.saleService.GetSale(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("Failed to get sale", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get sale")
		return
	}

	response := CompleteSaleResponse{
		ID:            sale.ID.String(),
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
	}
	for _, item := range items {
		response.Items = append(response.Items, SaleItemResponse{
			ProductID:   item.ProductID.String(),
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// respondSaleError maps engine errors onto the response contract:
// validation problems are 400s, conflicts 409, missing references 404,
// and anything from the store itself a retryable upstream failure.
func (h *SaleHandler) respondSaleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptySale),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrLoanRequiresCustomer):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusConflict, "insufficient stock; refresh the catalog and adjust quantities")
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCustomerNotFound),
		errors.Is(err, repository.ErrEmployeeNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("Sale commit failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "sale could not be committed; please retry")
	}
}
