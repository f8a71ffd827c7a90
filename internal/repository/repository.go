package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Checkout attempt statuses recorded in the journal.
const (
	StatusOrderCreated  = "order_created"
	StatusPaymentReady  = "payment_ready"
	StatusPaymentFailed = "payment_failed"
	StatusSucceeded     = "succeeded"
	StatusCancelled     = "cancelled"
)

// CheckoutAttempt is one journal row: a user's attempt to check out an
// offer, with the upstream order it produced and how it settled.
type CheckoutAttempt struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	OfferID     string    `json:"offerId" db:"offer_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	OrderID     string    `json:"orderId" db:"order_id"`
	AmountMinor int64     `json:"amountMinor" db:"amount_minor"`
	VoucherCode *string   `json:"voucherCode,omitempty" db:"voucher_code"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CheckoutRepository defines the interface for the checkout journal. Writes
// are best-effort from the state machine's point of view: journal failures
// are logged, never allowed to block a checkout.
type CheckoutRepository interface {
	// RecordAttempt inserts a new checkout attempt.
	RecordAttempt(ctx context.Context, attempt *CheckoutAttempt) error

	// UpdateStatus transitions the attempt for the given upstream order id.
	UpdateStatus(ctx context.Context, orderID, status string) error

	// GetByOrderID retrieves the attempt for the given upstream order id.
	// Returns nil when no attempt exists.
	GetByOrderID(ctx context.Context, orderID string) (*CheckoutAttempt, error)
}
