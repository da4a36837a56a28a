package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fjod/kasikota/internal/basket"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "test-request-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "test-request-123", seen)
	assert.Equal(t, "test-request-123", rec.Header().Get("X-Request-ID"))
}

func TestFlashNotifier_OutsideRequestIsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		FlashNotifier().Notify(context.Background(), basket.Notification{Kind: basket.KindItemAdded})
	})
}

func TestFlashMiddleware_CollectsPerRequest(t *testing.T) {
	var drained []basket.Notification
	handler := FlashMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := FlashNotifier()
		n.Notify(r.Context(), basket.Notification{Kind: basket.KindItemAdded})
		n.Notify(r.Context(), basket.Notification{Kind: basket.KindQuantityIncreased})
		drained = flashFrom(r.Context()).drain()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, drained, 2)
	assert.Equal(t, basket.KindQuantityIncreased, drained[1].Kind)
}
