package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leaselink/leaselink/internal/service"
	"github.com/leaselink/leaselink/pkg/httputil"
	"github.com/leaselink/leaselink/pkg/middleware"
	"github.com/leaselink/leaselink/pkg/pagination"
	"github.com/leaselink/leaselink/pkg/validator"
)

// PropertyHandler handles HTTP requests for property endpoints.
type PropertyHandler struct {
	service *service.PropertyService
	logger  *slog.Logger
}

// NewPropertyHandler creates a new property HTTP handler.
func NewPropertyHandler(svc *service.PropertyService, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// AmenityRequest is one amenity entry in a property or amenity request body.
type AmenityRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	Included      bool   `json:"included"`
	MonthlyCharge int64  `json:"monthly_charge" validate:"gte=0"`
}

// CreatePropertyRequest is the JSON request body for creating a property.
type CreatePropertyRequest struct {
	Name      string           `json:"name" validate:"required,min=1,max=200"`
	Location  string           `json:"location" validate:"required,min=1,max=500"`
	Type      string           `json:"type" validate:"required,oneof=apartment house room commercial"`
	Rent      int64            `json:"rent" validate:"required,gt=0"`
	DueDate   int              `json:"due_date" validate:"required,gte=1,lte=31"`
	Photos    []string         `json:"photos" validate:"omitempty,dive,url"`
	Amenities []AmenityRequest `json:"amenities" validate:"omitempty,dive"`
}

// UpdatePropertyRequest is the JSON request body for updating a property.
type UpdatePropertyRequest struct {
	Name     *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Location *string   `json:"location" validate:"omitempty,min=1,max=500"`
	Type     *string   `json:"type" validate:"omitempty,oneof=apartment house room commercial"`
	Rent     *int64    `json:"rent" validate:"omitempty,gt=0"`
	DueDate  *int      `json:"due_date" validate:"omitempty,gte=1,lte=31"`
	Photos   *[]string `json:"photos" validate:"omitempty,dive,url"`
}

// ReplaceAmenitiesRequest is the JSON request body for replacing the amenity set.
type ReplaceAmenitiesRequest struct {
	Amenities []AmenityRequest `json:"amenities" validate:"dive"`
}

func toAmenityInputs(reqs []AmenityRequest) []service.AmenityInput {
	inputs := make([]service.AmenityInput, 0, len(reqs))
	for _, a := range reqs {
		inputs = append(inputs, service.AmenityInput{
			Name:          a.Name,
			Included:      a.Included,
			MonthlyCharge: a.MonthlyCharge,
		})
	}
	return inputs
}

// --- Handlers ---

// Create handles POST /api/v1/properties
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreatePropertyRequest
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

	ownerID := middleware.UserIDFromContext(r.Context())
	detail, err := h.service.Create(r.Context(), ownerID, service.CreatePropertyInput{
		Name:      req.Name,
		Location:  req.Location,
		Type:      req.Type,
		Rent:      req.Rent,
		DueDate:   req.DueDate,
		Photos:    req.Photos,
		Amenities: toAmenityInputs(req.Amenities),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: detail})
}

// List handles GET /api/v1/properties
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserIDFromContext(r.Context())
	params := pagination.FromRequest(r)

	result, err := h.service.List(r.Context(), ownerID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Get handles GET /api/v1/properties/{id}
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserIDFromContext(r.Context())
	propertyID := chi.URLParam(r, "id")

	detail, err := h.service.Get(r.Context(), ownerID, propertyID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// Update handles PUT /api/v1/properties/{id}
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdatePropertyRequest
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

	ownerID := middleware.UserIDFromContext(r.Context())
	propertyID := chi.URLParam(r, "id")

	property, err := h.service.Update(r.Context(), ownerID, propertyID, service.UpdatePropertyInput{
		Name:     req.Name,
		Location: req.Location,
		Type:     req.Type,
		Rent:     req.Rent,
		DueDate:  req.DueDate,
		Photos:   req.Photos,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: property})
}

// Delete handles DELETE /api/v1/properties/{id}
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserIDFromContext(r.Context())
	propertyID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), ownerID, propertyID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAmenities handles GET /api/v1/properties/{id}/amenities
func (h *PropertyHandler) ListAmenities(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.UserIDFromContext(r.Context())
	propertyID := chi.URLParam(r, "id")

	detail, err := h.service.Get(r.Context(), ownerID, propertyID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail.Amenities})
}

// ReplaceAmenities handles PUT /api/v1/properties/{id}/amenities
func (h *PropertyHandler) ReplaceAmenities(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req ReplaceAmenitiesRequest
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

	ownerID := middleware.UserIDFromContext(r.Context())
	propertyID := chi.URLParam(r, "id")

	amenities, err := h.service.ReplaceAmenities(r.Context(), ownerID, propertyID, toAmenityInputs(req.Amenities))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: amenities})
}
