// Package backend is the client for the upstream marketplace API, which
// remains an opaque collaborator: it owns offers, orders and payment
// sessions; this service only drives the three endpoints checkout needs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// requestTimeout bounds every upstream round-trip.
const requestTimeout = 10 * time.Second

// Order is the upstream order record, returned with its total in major
// currency units.
type Order struct {
	ID         string  `json:"orderId"`
	TotalPrice float64 `json:"totalPrice"`
	Status     string  `json:"status,omitempty"`
}

// PaymentIntent is the payment session handle used to initialise the
// provider's payment sheet on the device.
type PaymentIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// APIError is a non-2xx upstream response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// Client calls the upstream marketplace REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an upstream API client.
func NewClient(baseURL, apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger.With().Str("component", "backend-client").Logger(),
	}
}

type createOrderRequest struct {
	OfferID     string `json:"offerId"`
	Quantity    int    `json:"quantity"`
	VoucherCode string `json:"voucherCode,omitempty"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

type createPaymentIntentRequest struct {
	OrderID string `json:"orderId"`
}

// CreateOrder creates an upstream order for a single offer.
func (c *Client) CreateOrder(ctx context.Context, offerID string, quantity int, voucherCode string) (*Order, error) {
	var order Order
	err := c.post(ctx, "/orders", createOrderRequest{
		OfferID:     offerID,
		Quantity:    quantity,
		VoucherCode: voucherCode,
	}, &order)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("offer_id", offerID).
			Int("quantity", quantity).
			Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	c.logger.Info().
		Str("order_id", order.ID).
		Str("offer_id", offerID).
		Float64("total_price", order.TotalPrice).
		Msg("order created")

	return &order, nil
}

// CancelOrder cancels an upstream order. Callers treat failures as
// best-effort: the order may have already expired or been auto-cancelled
// server-side.
func (c *Client) CancelOrder(ctx context.Context, orderID, reason string) error {
	var order Order
	path := fmt.Sprintf("/orders/%s/cancel", orderID)
	if err := c.post(ctx, path, cancelOrderRequest{Reason: reason}, &order); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", orderID, err)
	}

	c.logger.Info().Str("order_id", orderID).Str("reason", reason).Msg("order cancelled")
	return nil
}

// CreatePaymentIntent initialises a payment session for the order.
func (c *Client) CreatePaymentIntent(ctx context.Context, orderID string) (*PaymentIntent, error) {
	var intent PaymentIntent
	err := c.post(ctx, "/payments/create-payment-intent", createPaymentIntentRequest{OrderID: orderID}, &intent)
	if err != nil {
		c.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to create payment intent")
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	c.logger.Debug().
		Str("order_id", orderID).
		Str("payment_intent_id", intent.PaymentIntentID).
		Msg("payment intent created")

	return &intent, nil
}

// post sends a JSON body and decodes a JSON response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}

// readErrorMessage extracts a human-readable message from an error body,
// falling back to the raw body when it is not the standard error shape.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
