package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/leaselink/leaselink/internal/service"
	"github.com/leaselink/leaselink/pkg/httputil"
	"github.com/leaselink/leaselink/pkg/middleware"
	"github.com/leaselink/leaselink/pkg/validator"
)

// PaymentHandler handles HTTP requests for payment endpoints.
type PaymentHandler struct {
	service *service.PaymentService
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{service: svc, logger: logger}
}

// RecordPaymentRequest is the JSON request body for recording a rent payment.
type RecordPaymentRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Currency   string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

// Record handles POST /api/v1/payments
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	tenantID := middleware.UserIDFromContext(r.Context())
	payment, err := h.service.Record(r.Context(), tenantID, service.RecordPaymentInput{
		PropertyID: req.PropertyID,
		Amount:     req.Amount,
		Currency:   req.Currency,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: payment})
}

// List handles GET /api/v1/payments
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	role := middleware.RoleFromContext(r.Context())

	payments, err := h.service.List(r.Context(), userID, role)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: payments})
}
