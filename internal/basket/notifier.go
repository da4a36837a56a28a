package basket

import (
	"context"
	"log/slog"
)

type NotificationKind string

const (
	KindItemAdded         NotificationKind = "item_added"
	KindQuantityIncreased NotificationKind = "quantity_increased"
	KindItemRemoved       NotificationKind = "item_removed"
)

// Notification is the user-visible toast produced by a basket mutation.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the service log.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) LogNotifier {
	return LogNotifier{log: log}
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	l.log.InfoContext(ctx, n.Title, "kind", n.Kind, "description", n.Description)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// Fanout delivers each notification to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, nt := range f {
		nt.Notify(ctx, n)
	}
}
