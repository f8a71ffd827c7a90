// Package events publishes checkout lifecycle events for downstream
// consumers (analytics, vendor notifications).
package events

import (
	"context"
	"time"
)

// Event types emitted over the checkout lifecycle.
const (
	TypeOrderCreated      = "order_created"
	TypePaymentSucceeded  = "payment_succeeded"
	TypePaymentFailed     = "payment_failed"
	TypeCheckoutCancelled = "checkout_cancelled"
)

// CheckoutEvent is one step of a user's checkout, keyed by user for
// per-user ordering on the topic.
type CheckoutEvent struct {
	Type        string    `json:"type"`
	UserID      string    `json:"user_id"`
	OrderID     string    `json:"order_id,omitempty"`
	OfferID     string    `json:"offer_id,omitempty"`
	AmountMinor int64     `json:"amount_minor,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher publishes checkout events. Publishing is best-effort from the
// caller's point of view; failures are logged, never surfaced to users.
type Publisher interface {
	Publish(ctx context.Context, event CheckoutEvent) error
	Close() error
}

// NoopPublisher discards all events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, CheckoutEvent) error { return nil }
func (NoopPublisher) Close() error                                 { return nil }
