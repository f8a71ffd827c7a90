package checkout

import (
	"context"
	"sync"
	"time"

	"lastbite/internal/backend"
	"lastbite/internal/cart"
	"lastbite/internal/events"
	"lastbite/internal/model"
	"lastbite/internal/repository"
	"lastbite/internal/voucher"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BackendClient is the slice of the upstream API the state machine drives.
type BackendClient interface {
	CreateOrder(ctx context.Context, offerID string, quantity int, voucherCode string) (*backend.Order, error)
	CancelOrder(ctx context.Context, orderID, reason string) error
	CreatePaymentIntent(ctx context.Context, orderID string) (*backend.PaymentIntent, error)
}

// Machine drives one user's cart through order creation and payment to a
// terminal state, exactly once per checkout attempt. At most one pending
// payment exists at a time: a new checkout can only begin from a settled
// state.
//
// Upstream calls are made without holding the lock; a generation counter
// detects cancellation racing an in-flight call, in which case the call's
// result is discarded rather than acted upon.
type Machine struct {
	mu      sync.Mutex
	state   State
	pending *model.PendingPayment
	lastErr string
	gen     uint64

	userID    string
	cart      *cart.Cart
	backend   BackendClient
	vouchers  voucher.Validator
	journal   repository.CheckoutRepository
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewMachine creates a checkout machine for one user's cart. The voucher
// validator and journal may be nil when those features are disabled.
func NewMachine(
	userID string,
	userCart *cart.Cart,
	backendClient BackendClient,
	vouchers voucher.Validator,
	journal repository.CheckoutRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) *Machine {
	return &Machine{
		state:     StateIdle,
		userID:    userID,
		cart:      userCart,
		backend:   backendClient,
		vouchers:  vouchers,
		journal:   journal,
		publisher: publisher,
		logger:    logger.With().Str("component", "checkout").Str("user_id", userID).Logger(),
	}
}

// Begin starts a checkout for the cart's current contents.
//
// An empty cart is a validation error: no state transition, no network call.
// A machine that is not settled refuses with a checkout-in-progress error.
// The upstream order is created for the first line item of the cart only;
// the order contract takes a single offer per order, so a multi-item cart
// checks out its items one order at a time.
//
// On success the machine is in payment_ready and the returned pending
// payment carries the amount in minor units plus the payment session handle.
// An order-creation failure returns the machine to idle; a payment-intent
// failure leaves it in error, retryable via RetryInit.
func (m *Machine) Begin(ctx context.Context, voucherCode string) (*model.PendingPayment, error) {
	m.mu.Lock()
	if !m.state.settled() {
		m.mu.Unlock()
		return nil, model.ErrCheckoutInProgress
	}

	items := m.cart.Items()
	if len(items) == 0 {
		m.mu.Unlock()
		return nil, model.ErrEmptyCart
	}

	if voucherCode != "" && m.vouchers != nil {
		if err := m.vouchers.Validate(ctx, voucherCode); err != nil {
			m.mu.Unlock()
			m.logger.Warn().Str("voucher_code", voucherCode).Err(err).Msg("invalid voucher code")
			return nil, err
		}
	}

	first := items[0]
	m.state = StateCreatingOrder
	m.lastErr = ""
	gen := m.gen
	m.mu.Unlock()

	order, err := m.backend.CreateOrder(ctx, first.Offer.ID, first.Quantity, voucherCode)

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		// Checkout was cancelled while the call was in flight; the created
		// order (if any) is left to expire server-side.
		m.logger.Info().Msg("discarding order creation result after cancellation")
		return nil, model.ErrCheckoutSuperseded
	}
	if err != nil {
		m.state = StateIdle
		m.mu.Unlock()
		return nil, err
	}

	m.pending = &model.PendingPayment{
		OrderID:     order.ID,
		AmountMinor: model.ToMinorUnits(order.TotalPrice),
	}
	m.state = StatePaymentLoading
	m.mu.Unlock()

	m.recordAttempt(ctx, first, order, voucherCode)
	m.publish(ctx, events.CheckoutEvent{
		Type:        events.TypeOrderCreated,
		OrderID:     order.ID,
		OfferID:     first.Offer.ID,
		AmountMinor: model.ToMinorUnits(order.TotalPrice),
	})

	return m.initPayment(ctx, gen)
}

// RetryInit re-runs payment session initialisation after an init failure.
func (m *Machine) RetryInit(ctx context.Context) (*model.PendingPayment, error) {
	m.mu.Lock()
	if m.state != StateError || m.pending == nil {
		m.mu.Unlock()
		return nil, model.ErrInvalidCheckoutState
	}
	m.state = StatePaymentLoading
	m.lastErr = ""
	gen := m.gen
	m.mu.Unlock()

	return m.initPayment(ctx, gen)
}

// initPayment creates the payment intent for the pending order and settles
// the machine in payment_ready, or in error when initialisation fails.
func (m *Machine) initPayment(ctx context.Context, gen uint64) (*model.PendingPayment, error) {
	m.mu.Lock()
	if m.gen != gen || m.pending == nil {
		m.mu.Unlock()
		return nil, model.ErrCheckoutSuperseded
	}
	orderID := m.pending.OrderID
	m.mu.Unlock()

	intent, err := m.backend.CreatePaymentIntent(ctx, orderID)

	m.mu.Lock()
	if m.gen != gen || m.pending == nil {
		m.mu.Unlock()
		m.logger.Info().Msg("discarding payment intent result after cancellation")
		return nil, model.ErrCheckoutSuperseded
	}
	if err != nil {
		m.state = StateError
		m.lastErr = "failed to initialise payment session"
		m.mu.Unlock()
		return nil, err
	}

	m.pending.ClientSecret = intent.ClientSecret
	m.pending.PaymentIntentID = intent.PaymentIntentID
	m.state = StatePaymentReady
	p := *m.pending
	m.mu.Unlock()

	m.updateJournal(ctx, orderID, repository.StatusPaymentReady)

	return &p, nil
}

// Pay marks the provider sheet as open and awaiting the user.
func (m *Machine) Pay() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePaymentReady {
		return model.ErrInvalidCheckoutState
	}
	m.state = StateProcessing
	return nil
}

// Complete settles the machine with the provider's reported outcome.
//
// Success clears the cart and destroys the pending payment. A user-cancelled
// sheet returns silently to payment_ready with no error recorded. Any other
// provider error moves to the retryable error state with the message kept
// for display.
func (m *Machine) Complete(ctx context.Context, result ProviderResult) error {
	m.mu.Lock()
	if m.state != StateProcessing {
		m.mu.Unlock()
		return model.ErrInvalidCheckoutState
	}

	switch {
	case result.Succeeded:
		pending := m.pending
		m.state = StateSuccess
		m.pending = nil
		m.lastErr = ""
		m.mu.Unlock()

		// Clear after the transition: checkout does not consume the cart
		// until payment success.
		m.cart.Clear()

		if pending != nil {
			m.updateJournal(ctx, pending.OrderID, repository.StatusSucceeded)
			m.publish(ctx, events.CheckoutEvent{
				Type:        events.TypePaymentSucceeded,
				OrderID:     pending.OrderID,
				AmountMinor: pending.AmountMinor,
			})
			m.logger.Info().
				Str("order_id", pending.OrderID).
				Int64("amount_minor", pending.AmountMinor).
				Msg("payment succeeded")
		}
		return nil

	case result.Cancelled():
		m.state = StatePaymentReady
		m.lastErr = ""
		m.mu.Unlock()
		m.logger.Debug().Msg("payment sheet dismissed by user")
		return nil

	default:
		pending := m.pending
		m.state = StateError
		m.lastErr = result.ErrorMessage
		if m.lastErr == "" {
			m.lastErr = "payment failed"
		}
		m.mu.Unlock()

		if pending != nil {
			m.updateJournal(ctx, pending.OrderID, repository.StatusPaymentFailed)
			m.publish(ctx, events.CheckoutEvent{
				Type:    events.TypePaymentFailed,
				OrderID: pending.OrderID,
				Reason:  result.ErrorCode,
			})
		}
		m.logger.Warn().
			Str("error_code", result.ErrorCode).
			Str("error_message", result.ErrorMessage).
			Msg("payment failed")
		return nil
	}
}

// Cancel abandons the current checkout. The upstream order is cancelled
// best-effort: the order may already have expired or been auto-cancelled
// server-side, so failures are logged and swallowed. The cart is left
// untouched and the machine returns to idle. Cancelling an idle machine is
// a no-op.
func (m *Machine) Cancel(ctx context.Context) {
	m.mu.Lock()
	if m.state.settled() {
		m.mu.Unlock()
		return
	}
	pending := m.pending
	m.pending = nil
	m.lastErr = ""
	m.gen++
	m.state = StateCancelling
	m.mu.Unlock()

	if pending != nil && pending.OrderID != "" {
		if err := m.backend.CancelOrder(ctx, pending.OrderID, "user cancelled checkout"); err != nil {
			m.logger.Warn().
				Err(err).
				Str("order_id", pending.OrderID).
				Msg("best-effort order cancellation failed")
		}
		m.updateJournal(ctx, pending.OrderID, repository.StatusCancelled)
		m.publish(ctx, events.CheckoutEvent{
			Type:    events.TypeCheckoutCancelled,
			OrderID: pending.OrderID,
		})
	}

	m.mu.Lock()
	m.state = StateIdle
	m.mu.Unlock()

	m.logger.Info().Msg("checkout cancelled")
}

// State returns the machine's current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Status returns the checkout read model.
func (m *Machine) Status() model.CheckoutStatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp := model.CheckoutStatusResponse{
		State:     string(m.state),
		LastError: m.lastErr,
	}
	if m.pending != nil {
		p := *m.pending
		resp.Pending = &p
	}
	return resp
}

func (m *Machine) recordAttempt(ctx context.Context, item model.LineItem, order *backend.Order, voucherCode string) {
	if m.journal == nil {
		return
	}
	now := time.Now()
	attempt := &repository.CheckoutAttempt{
		ID:          uuid.New(),
		UserID:      m.userID,
		OfferID:     item.Offer.ID,
		Quantity:    item.Quantity,
		OrderID:     order.ID,
		AmountMinor: model.ToMinorUnits(order.TotalPrice),
		Status:      repository.StatusOrderCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if voucherCode != "" {
		attempt.VoucherCode = &voucherCode
	}
	if err := m.journal.RecordAttempt(ctx, attempt); err != nil {
		m.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to journal checkout attempt")
	}
}

func (m *Machine) updateJournal(ctx context.Context, orderID, status string) {
	if m.journal == nil {
		return
	}
	if err := m.journal.UpdateStatus(ctx, orderID, status); err != nil {
		m.logger.Warn().
			Err(err).
			Str("order_id", orderID).
			Str("status", status).
			Msg("failed to update checkout journal")
	}
}

func (m *Machine) publish(ctx context.Context, event events.CheckoutEvent) {
	if m.publisher == nil {
		return
	}
	event.UserID = m.userID
	event.OccurredAt = time.Now().UTC()
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish checkout event")
	}
}
