package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/kasikota/internal/checkout"
	"github.com/fjod/kasikota/internal/domain"
)

const ConfirmationPath = "/api/v1/confirmation"

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, d checkout.DeliveryDetails) (domain.OrderSnapshot, error)
}

type CheckoutHandler struct {
	checkout OrderPlacer
}

func NewCheckoutHandler(c OrderPlacer) *CheckoutHandler {
	return &CheckoutHandler{checkout: c}
}

type CheckoutResponseDTO struct {
	Next  string `json:"next"`
	Total string `json:"total"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.DeliveryDetails
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body")
		return
	}

	snap, err := h.checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	w.Header().Set("Location", ConfirmationPath)
	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		Next:  ConfirmationPath,
		Total: domain.FormatRand(domain.Money(snap.Total)),
	})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrMissingField):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing required field", Code: codeMissingRequiredField, Details: err.Error()})
	case errors.Is(err, checkout.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, codeInvalidEmail, "invalid email address")
	case errors.Is(err, checkout.ErrEmptyBasket):
		respondError(w, http.StatusConflict, codeEmptyBasket, "basket is empty")
	case errors.Is(err, checkout.ErrHandoffFailed):
		respondError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "order could not be placed, please try again")
	default:
		respondError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
	}
}
