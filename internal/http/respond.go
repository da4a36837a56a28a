package http

import (
	"encoding/json"
	"log"
	"net/http"
)

const (
	codeInvalidRequest       = "invalid_request"
	codeInvalidProductID     = "invalid_product_id"
	codeInvalidQuantity      = "invalid_quantity"
	codeProductNotFound      = "product_not_found"
	codeMissingRequiredField = "missing_required_field"
	codeInvalidEmail         = "invalid_email"
	codeEmptyBasket          = "empty_basket"
	codeServiceUnavailable   = "service_unavailable"
	codeInternalError        = "internal_error"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
