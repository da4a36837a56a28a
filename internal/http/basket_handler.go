package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/kasikota/internal/basket"
	"github.com/fjod/kasikota/internal/catalog"
	"github.com/fjod/kasikota/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxQuantity = 99

type BasketStore interface {
	Load(ctx context.Context) domain.Basket
	Add(ctx context.Context, item domain.CatalogItem)
	Remove(ctx context.Context, id string)
	SetQuantity(ctx context.Context, id string, quantity int)
	Clear(ctx context.Context)
}

type ProductFinder interface {
	Find(ctx context.Context, id string) (domain.CatalogItem, error)
}

type BasketHandler struct {
	basket  BasketStore
	catalog ProductFinder
}

func NewBasketHandler(b BasketStore, c ProductFinder) *BasketHandler {
	return &BasketHandler{
		basket:  b,
		catalog: c,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type BasketLineDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	ImageRef     string  `json:"imageUrl"`
	DisplayPrice string  `json:"displayPrice"`
	Subtotal     string  `json:"subtotal"`
}

type BasketResponseDTO struct {
	Items         []BasketLineDTO       `json:"items"`
	Total         string                `json:"total"`
	Count         int                   `json:"count"`
	Notifications []basket.Notification `json:"notifications,omitempty"`
}

// GET /api/v1/basket
func (h *BasketHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondBasket(w, r, http.StatusOK)
}

// POST /api/v1/basket/items
func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, codeInvalidProductID, "product_id is required")
		return
	}

	item, err := h.catalog.Find(r.Context(), req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, codeProductNotFound, "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "catalog unavailable")
		return
	}

	h.basket.Add(r.Context(), item)
	h.respondBasket(w, r, http.StatusCreated)
}

// PUT /api/v1/basket/items/{id}
func (h *BasketHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, codeInvalidQuantity, "quantity is required")
		return
	}
	if *req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, codeInvalidQuantity, "quantity must be at most 99")
		return
	}

	// zero or negative removes the line
	h.basket.SetQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity)
	h.respondBasket(w, r, http.StatusOK)
}

// DELETE /api/v1/basket/items/{id}
func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.basket.Remove(r.Context(), chi.URLParam(r, "id"))
	h.respondBasket(w, r, http.StatusOK)
}

// DELETE /api/v1/basket
func (h *BasketHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.basket.Clear(r.Context())
	h.respondBasket(w, r, http.StatusOK)
}

func (h *BasketHandler) respondBasket(w http.ResponseWriter, r *http.Request, status int) {
	resp := toBasketResponse(h.basket.Load(r.Context()))
	if f := flashFrom(r.Context()); f != nil {
		resp.Notifications = f.drain()
	}
	respondJSON(w, status, resp)
}

func toBasketResponse(b domain.Basket) BasketResponseDTO {
	items := make([]BasketLineDTO, 0, len(b.Lines))
	for _, l := range b.Lines {
		items = append(items, BasketLineDTO{
			ID:           l.ID,
			Name:         l.Name,
			Price:        l.Price,
			Quantity:     l.Quantity,
			ImageRef:     l.ImageRef,
			DisplayPrice: domain.FormatRand(domain.Money(l.Price)),
			Subtotal:     domain.FormatRand(l.Subtotal()),
		})
	}

	summary := b.Summary()
	return BasketResponseDTO{
		Items: items,
		Total: domain.FormatRand(summary.Total),
		Count: summary.Count,
	}
}
