// Package checkout turns the current basket plus the shopper's delivery
// details into an order snapshot and hands it to the confirmation step.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/fjod/kasikota/internal/clock"
	"github.com/fjod/kasikota/internal/domain"
)

var (
	ErrEmptyBasket   = errors.New("basket is empty")
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrHandoffFailed = errors.New("order could not be handed to confirmation")
)

type DeliveryDetails struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type BasketReader interface {
	Load(ctx context.Context) domain.Basket
}

type Handoff interface {
	Publish(ctx context.Context, snapshot domain.OrderSnapshot) error
}

type EventPublisher interface {
	OrderPlaced(ctx context.Context, snapshot domain.OrderSnapshot) error
}

type Service struct {
	basket  BasketReader
	handoff Handoff
	events  EventPublisher
	clock   clock.Clock
	log     *slog.Logger
}

func NewService(b BasketReader, h Handoff, events EventPublisher, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		basket:  b,
		handoff: h,
		events:  events,
		clock:   clk,
		log:     log,
	}
}

// PlaceOrder captures the basket at this instant and publishes the snapshot.
// The basket itself is left untouched; the confirmation step clears it.
func (s *Service) PlaceOrder(ctx context.Context, d DeliveryDetails) (domain.OrderSnapshot, error) {
	d = d.normalized()
	if err := d.Validate(); err != nil {
		return domain.OrderSnapshot{}, err
	}

	b := s.basket.Load(ctx)
	if b.IsEmpty() {
		return domain.OrderSnapshot{}, ErrEmptyBasket
	}

	items := make([]domain.OrderItem, 0, len(b.Lines))
	for _, l := range b.Lines {
		items = append(items, domain.OrderItem{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
		})
	}

	snapshot := domain.OrderSnapshot{
		Name:       d.Name,
		Email:      d.Email,
		Phone:      d.Phone,
		Address:    d.Address,
		City:       d.City,
		PostalCode: d.PostalCode,
		Items:      items,
		Total:      b.Total().InexactFloat64(),
		OrderDate:  s.clock.Now().UTC().Format(domain.OrderDateLayout),
	}

	if err := s.handoff.Publish(ctx, snapshot); err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("%w: %w", ErrHandoffFailed, err)
	}

	if s.events != nil {
		if err := s.events.OrderPlaced(ctx, snapshot); err != nil {
			s.log.WarnContext(ctx, "could not publish order event", "error", err)
		}
	}

	s.log.InfoContext(ctx, "order handed to confirmation", "items", len(items), "total", snapshot.Total)
	return snapshot, nil
}

// Validate checks that every contact and delivery field is present.
func (d DeliveryDetails) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", d.Name},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Address},
		{"city", d.City},
		{"postalCode", d.PostalCode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	// a bare address only, no "Name <addr>" form
	addr, err := mail.ParseAddress(d.Email)
	if err != nil || addr.Address != d.Email {
		return fmt.Errorf("%w: %s", ErrInvalidEmail, d.Email)
	}
	return nil
}

func (d DeliveryDetails) normalized() DeliveryDetails {
	return DeliveryDetails{
		Name:       strings.TrimSpace(d.Name),
		Email:      strings.TrimSpace(d.Email),
		Phone:      strings.TrimSpace(d.Phone),
		Address:    strings.TrimSpace(d.Address),
		City:       strings.TrimSpace(d.City),
		PostalCode: strings.TrimSpace(d.PostalCode),
	}
}
