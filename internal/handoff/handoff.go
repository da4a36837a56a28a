// Package handoff carries one finalized order from checkout to the
// confirmation view through session storage, exactly once.
package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/kasikota/internal/domain"
	"github.com/fjod/kasikota/internal/storage"
)

// SessionKey is the session record holding the in-flight order snapshot.
const SessionKey = "lastOrder"

// Handoff is a single mutable slot. Publish overwrites any pending snapshot.
type Handoff struct {
	storage storage.Store
	log     *slog.Logger
}

func New(st storage.Store, log *slog.Logger) *Handoff {
	return &Handoff{
		storage: st,
		log:     log,
	}
}

func (h *Handoff) Publish(ctx context.Context, snapshot domain.OrderSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal order snapshot failed: %w", err)
	}
	if err := h.storage.Set(ctx, SessionKey, data); err != nil {
		h.log.ErrorContext(ctx, "could not publish order snapshot", "error", err)
		return fmt.Errorf("publish order snapshot failed: %w", err)
	}
	return nil
}

// Consume reads the pending snapshot. A missing or malformed record reports
// false: there is no order in flight.
func (h *Handoff) Consume(ctx context.Context) (domain.OrderSnapshot, bool) {
	data, err := h.storage.Get(ctx, SessionKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.log.WarnContext(ctx, "could not read order snapshot", "error", err)
		}
		return domain.OrderSnapshot{}, false
	}

	var snapshot domain.OrderSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		h.log.WarnContext(ctx, "could not parse order snapshot", "error", err)
		return domain.OrderSnapshot{}, false
	}
	return snapshot, true
}

func (h *Handoff) Retire(ctx context.Context) {
	if err := h.storage.Delete(ctx, SessionKey); err != nil {
		h.log.ErrorContext(ctx, "could not retire order snapshot", "error", err)
	}
}
