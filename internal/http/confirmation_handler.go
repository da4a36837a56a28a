package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fjod/kasikota/internal/handoff"
)

const HomePath = "/"

type ConfirmationHandler struct {
	slot    handoff.Slot
	basket  handoff.BasketClearer
	numbers *handoff.OrderNumbers
	log     *slog.Logger
}

func NewConfirmationHandler(slot handoff.Slot, basket handoff.BasketClearer, numbers *handoff.OrderNumbers, log *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{
		slot:    slot,
		basket:  basket,
		numbers: numbers,
		log:     log,
	}
}

// GET /api/v1/confirmation
//
// Each request is one confirmation view. The basket is cleared and the
// pending order retired only after the receipt has been written out.
func (h *ConfirmationHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := handoff.NewConfirmation(h.slot, h.basket, h.numbers, h.log)

	if view.Mount(ctx) == handoff.StateRedirectHome {
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
		return
	}

	snap, _ := view.Snapshot()
	body, err := json.Marshal(handoff.NewReceipt(view.OrderNumber(), snap))
	if err != nil {
		h.log.ErrorContext(ctx, "failed to encode receipt", "error", err)
		respondError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.log.WarnContext(ctx, "receipt not delivered, keeping order in flight", "error", err)
		return
	}

	view.Rendered(ctx)
}
