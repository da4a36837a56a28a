// Package catalog supplies the read-only list of purchasable items.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fjod/kasikota/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = errors.New("product not found")

// Source loads the full catalog in display order.
type Source interface {
	Items(ctx context.Context) ([]domain.CatalogItem, error)
}

// Service loads the catalog once and serves it from memory afterwards.
type Service struct {
	source Source
	log    *slog.Logger
	sfg    singleflight.Group // concurrent first requests share one load

	mu     sync.RWMutex
	loaded bool
	items  []domain.CatalogItem
	byID   map[string]int
}

func NewService(source Source, log *slog.Logger) *Service {
	return &Service{source: source, log: log}
}

func (s *Service) Items(ctx context.Context) ([]domain.CatalogItem, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CatalogItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Service) Find(ctx context.Context, id string) (domain.CatalogItem, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.CatalogItem{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return domain.CatalogItem{}, ErrProductNotFound
	}
	return s.items[i], nil
}

// Categories lists the distinct categories in first-seen order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	for _, it := range items {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; !ok {
			seen[it.Category] = struct{}{}
			out = append(out, it.Category)
		}
	}
	return out, nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	// shared by every waiting caller, so the first caller's cancellation
	// must not end it
	loadCtx := context.WithoutCancel(ctx)
	_, err, _ := s.sfg.Do("catalog", func() (interface{}, error) {
		items, err := s.source.Items(loadCtx)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}

		valid, byID := s.index(items)

		s.mu.Lock()
		s.items, s.byID, s.loaded = valid, byID, true
		s.mu.Unlock()

		s.log.InfoContext(loadCtx, "catalog loaded", "items", len(valid))
		return nil, nil
	})
	return err
}

// index keeps the first item for each id and drops items without an id or a
// positive price.
func (s *Service) index(items []domain.CatalogItem) ([]domain.CatalogItem, map[string]int) {
	valid := make([]domain.CatalogItem, 0, len(items))
	byID := make(map[string]int, len(items))
	for _, it := range items {
		if _, dup := byID[it.ID]; it.ID == "" || it.Price <= 0 || dup {
			s.log.Warn("skipping invalid catalog item", "id", it.ID, "price", it.Price)
			continue
		}
		byID[it.ID] = len(valid)
		valid = append(valid, it)
	}
	return valid, byID
}
