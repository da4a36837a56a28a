package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	MaxBodySize    int64
}

type Handlers struct {
	Catalog      *CatalogHandler
	Basket       *BasketHandler
	Checkout     *CheckoutHandler
	Confirmation *ConfirmationHandler
}

func NewRouter(cfg RouterConfig, h Handlers, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Compress(5))
	r.Use(MaxBodySize(cfg.MaxBodySize))
	r.Use(FlashMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.Catalog.List)
		r.Get("/catalog/{id}", h.Catalog.Get)

		r.Get("/basket", h.Basket.Get)
		r.Delete("/basket", h.Basket.Clear)
		r.Post("/basket/items", h.Basket.AddItem)
		r.Put("/basket/items/{id}", h.Basket.UpdateQuantity)
		r.Delete("/basket/items/{id}", h.Basket.RemoveItem)

		r.Post("/checkout", h.Checkout.PlaceOrder)
		r.Get("/confirmation", h.Confirmation.Show)
	})

	return otelhttp.NewHandler(r, cfg.ServiceName)
}
