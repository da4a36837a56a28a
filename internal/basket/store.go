// Package basket owns the shopper's in-progress basket and keeps it in
// durable storage across restarts.
package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fjod/kasikota/internal/domain"
	"github.com/fjod/kasikota/internal/storage"
)

// StorageKey is the durable record holding the serialized basket.
const StorageKey = "kasikotaCart"

// Store is the single source of truth for the basket. Mutations are applied
// one at a time and persisted before they return. Persistence failures are
// logged and never reach the caller.
type Store struct {
	mu       sync.Mutex
	storage  storage.Store
	notifier Notifier
	log      *slog.Logger

	loaded bool
	lines  []domain.BasketLine
}

func NewStore(st storage.Store, notifier Notifier, log *slog.Logger) *Store {
	return &Store{
		storage:  st,
		notifier: notifier,
		log:      log,
	}
}

// Load returns a copy of the current basket, hydrating it from durable
// storage on first access.
func (s *Store) Load(ctx context.Context) domain.Basket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hydrate(ctx)
	return s.snapshot()
}

func (s *Store) Add(ctx context.Context, item domain.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx)

	var n Notification
	if i := s.indexOf(item.ID); i >= 0 {
		// existing line fields win over the possibly stale item
		s.lines[i].Quantity++
		n = Notification{
			Kind:        KindQuantityIncreased,
			Title:       "Updated cart",
			Description: fmt.Sprintf("%s quantity increased", item.Name),
		}
	} else {
		s.lines = append(s.lines, domain.BasketLine{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: 1,
			ImageRef: item.ImageRef,
		})
		n = Notification{
			Kind:        KindItemAdded,
			Title:       "Added to cart",
			Description: fmt.Sprintf("%s added to your order", item.Name),
		}
	}

	s.persist(ctx)
	s.notify(ctx, n)
}

func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx)

	s.remove(ctx, id)
}

// SetQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrate(ctx)

	if quantity <= 0 {
		s.remove(ctx, id)
		return
	}

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.lines[i].Quantity = quantity
	s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// no point reading a record that is about to be overwritten
	s.loaded = true
	s.lines = nil
	s.persist(ctx)
}

// Derive recomputes the basket total and item count from the current lines.
func (s *Store) Derive(ctx context.Context) domain.Summary {
	return s.Load(ctx).Summary()
}

func (s *Store) remove(ctx context.Context, id string) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	s.persist(ctx)

	s.notify(ctx, Notification{
		Kind:        KindItemRemoved,
		Title:       "Removed from cart",
		Description: "Item removed from your order",
	})
}

func (s *Store) hydrate(ctx context.Context) {
	if s.loaded {
		return
	}

	data, err := s.storage.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.loaded = true
		return
	}
	if err != nil {
		// stays unloaded: the next call retries and persist leaves the
		// stored record alone until then
		s.log.WarnContext(ctx, "could not load basket from storage", "error", err)
		return
	}
	s.loaded = true

	var lines []domain.BasketLine
	if err := json.Unmarshal(data, &lines); err != nil {
		s.log.WarnContext(ctx, "could not parse stored basket, starting empty", "error", err)
		return
	}
	s.lines = sanitize(lines, s.log.With("key", StorageKey))
}

func (s *Store) persist(ctx context.Context) {
	if !s.loaded {
		s.log.WarnContext(ctx, "basket not read from storage yet, skipping save")
		return
	}

	lines := s.lines
	if lines == nil {
		lines = []domain.BasketLine{}
	}

	data, err := json.Marshal(lines)
	if err != nil {
		s.log.ErrorContext(ctx, "could not encode basket", "error", err)
		return
	}
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		s.log.ErrorContext(ctx, "could not save basket to storage", "error", err)
	}
}

func (s *Store) notify(ctx context.Context, n Notification) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}

func (s *Store) indexOf(id string) int {
	for i, l := range s.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() domain.Basket {
	lines := make([]domain.BasketLine, len(s.lines))
	copy(lines, s.lines)
	return domain.Basket{Lines: lines}
}

// sanitize drops hydrated lines the basket could never have written. The
// first occurrence of a repeated id wins.
func sanitize(lines []domain.BasketLine, log *slog.Logger) []domain.BasketLine {
	seen := make(map[string]struct{}, len(lines))
	out := make([]domain.BasketLine, 0, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.ID]; l.ID == "" || l.Quantity <= 0 || dup {
			log.Warn("dropping invalid stored basket line", "id", l.ID, "quantity", l.Quantity)
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}
