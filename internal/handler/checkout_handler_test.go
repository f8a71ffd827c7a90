package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lastbite/internal/backend"
	"lastbite/internal/cart"
	"lastbite/internal/checkout"
	"lastbite/internal/events"
	"lastbite/internal/middleware"
	"lastbite/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend answers upstream calls with canned responses so handler tests
// can drive the checkout machine without a network.
type stubBackend struct {
	createOrderErr  error
	intentErr       error
	cancelledOrders []string
}

func (s *stubBackend) CreateOrder(_ context.Context, offerID string, quantity int, _ string) (*backend.Order, error) {
	if s.createOrderErr != nil {
		return nil, s.createOrderErr
	}
	return &backend.Order{ID: "order-1", TotalPrice: 4.99}, nil
}

func (s *stubBackend) CancelOrder(_ context.Context, orderID, _ string) error {
	s.cancelledOrders = append(s.cancelledOrders, orderID)
	return nil
}

func (s *stubBackend) CreatePaymentIntent(_ context.Context, orderID string) (*backend.PaymentIntent, error) {
	if s.intentErr != nil {
		return nil, s.intentErr
	}
	return &backend.PaymentIntent{ClientSecret: "cs_test", PaymentIntentID: "pi_test"}, nil
}

type checkoutFixture struct {
	backend  *stubBackend
	carts    *cart.Store
	cart     *CartHandler
	checkout *CheckoutHandler
}

func newCheckoutFixture() *checkoutFixture {
	b := &stubBackend{}
	carts := cart.NewStore(nil, zerolog.Nop())
	service := checkout.NewService(carts, b, nil, nil, events.NoopPublisher{}, zerolog.Nop())
	return &checkoutFixture{
		backend:  b,
		carts:    carts,
		cart:     NewCartHandler(carts, zerolog.Nop()),
		checkout: NewCheckoutHandler(service, zerolog.Nop()),
	}
}

func (f *checkoutFixture) addOffer(t *testing.T) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.cart.AddItem(rec, cartRequest(t, http.MethodPost, "/api/cart/items",
		`{"id":"offer-1","title":"Surprise bag","discountedPrice":4.99}`))
	require.Equal(t, http.StatusOK, rec.Code)
}

func checkoutRequest(t *testing.T, path, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, path, nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) model.CheckoutStatusResponse {
	t.Helper()
	var resp model.CheckoutStatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCheckoutHandler_Begin(t *testing.T) {
	f := newCheckoutFixture()
	f.addOffer(t)

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))

	assert.Equal(t, http.StatusCreated, rec.Code)

	var pending model.PendingPayment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pending))
	assert.Equal(t, "order-1", pending.OrderID)
	assert.Equal(t, int64(499), pending.AmountMinor)
	assert.Equal(t, "cs_test", pending.ClientSecret)
}

func TestCheckoutHandler_Begin_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, model.ErrCodeEmptyCart, errResp.Error)
}

func TestCheckoutHandler_Begin_WhileInProgress(t *testing.T) {
	f := newCheckoutFixture()
	f.addOffer(t)

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var errResp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, model.ErrCodeCheckoutInProgress, errResp.Error)
}

func TestCheckoutHandler_Begin_UpstreamFailure(t *testing.T) {
	f := newCheckoutFixture()
	f.backend.createOrderErr = errors.New("connection refused")
	f.addOffer(t)

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// A failed order creation settles the machine, so the next attempt is
	// allowed once the upstream recovers.
	f.backend.createOrderErr = nil
	rec = httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCheckoutHandler_RetryPayment(t *testing.T) {
	f := newCheckoutFixture()
	f.backend.intentErr = errors.New("provider unavailable")
	f.addOffer(t)

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	f.backend.intentErr = nil
	rec = httptest.NewRecorder()
	f.checkout.RetryPayment(rec, checkoutRequest(t, "/api/checkout/payment", ""))

	assert.Equal(t, http.StatusOK, rec.Code)

	var pending model.PendingPayment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pending))
	assert.Equal(t, "cs_test", pending.ClientSecret)
}

func TestCheckoutHandler_PayAndComplete_Success(t *testing.T) {
	f := newCheckoutFixture()
	f.addOffer(t)

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	f.checkout.Pay(rec, checkoutRequest(t, "/api/checkout/pay", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(checkout.StateProcessing), decodeStatus(t, rec).State)

	rec = httptest.NewRecorder()
	f.checkout.Complete(rec, checkoutRequest(t, "/api/checkout/complete",
		`{"status":"succeeded"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(checkout.StateSuccess), decodeStatus(t, rec).State)

	// Successful payment empties the cart.
	getRec := httptest.NewRecorder()
	f.cart.Get(getRec, cartRequest(t, http.MethodGet, "/api/cart", ""))
	assert.Empty(t, decodeCart(t, getRec).Items)
}

func TestCheckoutHandler_Complete_ProviderError(t *testing.T) {
	f := newCheckoutFixture()
	f.addOffer(t)

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))
	rec = httptest.NewRecorder()
	f.checkout.Pay(rec, checkoutRequest(t, "/api/checkout/pay", ""))

	rec = httptest.NewRecorder()
	f.checkout.Complete(rec, checkoutRequest(t, "/api/checkout/complete",
		`{"status":"failed","errorCode":"card_declined","errorMessage":"Your card was declined."}`))

	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeStatus(t, rec)
	assert.Equal(t, string(checkout.StateError), status.State)
	assert.Contains(t, status.LastError, "declined")
}

func TestCheckoutHandler_Complete_UserDismissedSheet(t *testing.T) {
	f := newCheckoutFixture()
	f.addOffer(t)

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))
	rec = httptest.NewRecorder()
	f.checkout.Pay(rec, checkoutRequest(t, "/api/checkout/pay", ""))

	rec = httptest.NewRecorder()
	f.checkout.Complete(rec, checkoutRequest(t, "/api/checkout/complete",
		`{"status":"failed","errorCode":"Canceled"}`))

	// Dismissing the provider sheet is not an error, the payment stays
	// ready for another attempt.
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeStatus(t, rec)
	assert.Equal(t, string(checkout.StatePaymentReady), status.State)
	assert.Empty(t, status.LastError)
}

func TestCheckoutHandler_Pay_WrongState(t *testing.T) {
	f := newCheckoutFixture()

	rec := httptest.NewRecorder()
	f.checkout.Pay(rec, checkoutRequest(t, "/api/checkout/pay", ""))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckoutHandler_Cancel(t *testing.T) {
	f := newCheckoutFixture()
	f.addOffer(t)

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", ""))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	f.checkout.Cancel(rec, checkoutRequest(t, "/api/checkout/cancel", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(checkout.StateIdle), decodeStatus(t, rec).State)
	assert.Equal(t, []string{"order-1"}, f.backend.cancelledOrders)

	// Cancelling keeps the cart intact.
	getRec := httptest.NewRecorder()
	f.cart.Get(getRec, cartRequest(t, http.MethodGet, "/api/cart", ""))
	assert.Len(t, decodeCart(t, getRec).Items, 1)
}

func TestCheckoutHandler_Cancel_Idle_IsNoop(t *testing.T) {
	f := newCheckoutFixture()

	rec := httptest.NewRecorder()
	f.checkout.Cancel(rec, checkoutRequest(t, "/api/checkout/cancel", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(checkout.StateIdle), decodeStatus(t, rec).State)
	assert.Empty(t, f.backend.cancelledOrders)
}

func TestCheckoutHandler_Status(t *testing.T) {
	f := newCheckoutFixture()
	f.addOffer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/checkout", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	f.checkout.Status(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(checkout.StateIdle), decodeStatus(t, rec).State)

	beginRec := httptest.NewRecorder()
	f.checkout.Begin(beginRec, checkoutRequest(t, "/api/checkout", ""))
	require.Equal(t, http.StatusCreated, beginRec.Code)

	rec = httptest.NewRecorder()
	f.checkout.Status(rec, req)
	status := decodeStatus(t, rec)
	assert.Equal(t, string(checkout.StatePaymentReady), status.State)
	require.NotNil(t, status.Pending)
	assert.Equal(t, "order-1", status.Pending.OrderID)
}

func TestCheckoutHandler_Begin_InvalidBody(t *testing.T) {
	f := newCheckoutFixture()
	f.addOffer(t)

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, checkoutRequest(t, "/api/checkout", `{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutHandler_Begin_EmptyChunkedBody(t *testing.T) {
	f := newCheckoutFixture()
	f.addOffer(t)

	// Chunked transfer encoding reports no content length even when the
	// body turns out to be empty.
	req := checkoutRequest(t, "/api/checkout", "")
	req.Body = io.NopCloser(strings.NewReader(""))
	req.ContentLength = -1

	rec := httptest.NewRecorder()
	f.checkout.Begin(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}
