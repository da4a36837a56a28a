package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/kasikota/internal/catalog"
	"github.com/fjod/kasikota/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CatalogReader interface {
	Items(ctx context.Context) ([]domain.CatalogItem, error)
	Find(ctx context.Context, id string) (domain.CatalogItem, error)
	Categories(ctx context.Context) ([]string, error)
}

type CatalogHandler struct {
	catalog CatalogReader
}

func NewCatalogHandler(c CatalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

type CatalogResponseDTO struct {
	Items      []domain.CatalogItem `json:"items"`
	Categories []string             `json:"categories"`
}

// GET /api/v1/catalog
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Items(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "catalog unavailable")
		return
	}
	cats, err := h.catalog.Categories(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "catalog unavailable")
		return
	}

	respondJSON(w, http.StatusOK, CatalogResponseDTO{Items: items, Categories: cats})
}

// GET /api/v1/catalog/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Find(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, codeProductNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "catalog unavailable")
		return
	}

	respondJSON(w, http.StatusOK, item)
}
