package handoff

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fjod/kasikota/internal/domain"
)

type State string

const (
	StateInit         State = "INIT"
	StateDisplayed    State = "DISPLAYED"
	StateCleaned      State = "CLEANED"
	StateRedirectHome State = "REDIRECT_HOME"
)

func (s State) IsTerminal() bool {
	return s == StateCleaned || s == StateRedirectHome
}

func (s State) String() string {
	return string(s)
}

// Slot is the order handoff as seen by the confirmation view.
type Slot interface {
	Consume(ctx context.Context) (domain.OrderSnapshot, bool)
	Retire(ctx context.Context)
}

type BasketClearer interface {
	Clear(ctx context.Context)
}

// Confirmation drives one confirmation view lifecycle:
//
//	INIT --Mount--> REDIRECT_HOME           no order in flight
//	INIT --Mount--> DISPLAYED               snapshot loaded for rendering
//	DISPLAYED --Rendered--> CLEANED         basket cleared, snapshot retired
//
// Cleanup is gated on DISPLAYED and never happens inside Mount, so a repeated
// Mount cannot find the record already retired and redirect home.
type Confirmation struct {
	slot   Slot
	basket BasketClearer
	log    *slog.Logger

	mu          sync.Mutex
	state       State
	snapshot    domain.OrderSnapshot
	orderNumber string
}

func NewConfirmation(slot Slot, basket BasketClearer, numbers *OrderNumbers, log *slog.Logger) *Confirmation {
	return &Confirmation{
		slot:        slot,
		basket:      basket,
		log:         log,
		state:       StateInit,
		orderNumber: numbers.Next(),
	}
}

// Mount loads the pending order. Only the first call consumes; later calls
// report the current state.
func (c *Confirmation) Mount(ctx context.Context) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInit {
		return c.state
	}

	snapshot, ok := c.slot.Consume(ctx)
	if !ok {
		c.state = StateRedirectHome
		c.log.InfoContext(ctx, "no order in flight, redirecting home")
		return c.state
	}

	c.snapshot = snapshot
	c.state = StateDisplayed
	return c.state
}

// Rendered reports that the snapshot has been shown to the shopper and runs
// the cleanup. It does nothing unless the view is DISPLAYED.
func (c *Confirmation) Rendered(ctx context.Context) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDisplayed {
		return c.state
	}

	c.basket.Clear(ctx)
	c.slot.Retire(ctx)
	c.state = StateCleaned
	c.log.InfoContext(ctx, "order confirmed", "order_number", c.orderNumber, "total", c.snapshot.Total)
	return c.state
}

func (c *Confirmation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the loaded order once the view has reached DISPLAYED.
func (c *Confirmation) Snapshot() (domain.OrderSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDisplayed && c.state != StateCleaned {
		return domain.OrderSnapshot{}, false
	}
	return c.snapshot, true
}

func (c *Confirmation) OrderNumber() string {
	return c.orderNumber
}
