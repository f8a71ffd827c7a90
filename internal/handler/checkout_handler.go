package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"lastbite/internal/checkout"
	"lastbite/internal/middleware"
	"lastbite/internal/model"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout-related HTTP requests.
type CheckoutHandler struct {
	service *checkout.Service
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service *checkout.Service, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Begin handles POST /api/checkout requests.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	// The body is optional; an absent or empty body (io.EOF, including
	// chunked requests with no payload) means no voucher.
	var req model.CheckoutRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
			return
		}
	}

	m := h.service.For(r.Context(), userID)
	pending, err := m.Begin(r.Context(), req.VoucherCode)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	h.logger.Info().
		Str("user_id", userID).
		Str("order_id", pending.OrderID).
		Int64("amount_minor", pending.AmountMinor).
		Msg("checkout started")

	writeJSON(w, http.StatusCreated, pending)
}

// RetryPayment handles POST /api/checkout/payment requests, re-running
// payment session initialisation after an init failure.
func (h *CheckoutHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	m := h.service.For(r.Context(), userID)
	pending, err := m.RetryInit(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, pending)
}

// Pay handles POST /api/checkout/pay requests, marking the provider sheet
// as open.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	m := h.service.For(r.Context(), userID)
	if err := m.Pay(); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, m.Status())
}

// Complete handles POST /api/checkout/complete requests carrying the
// provider outcome reported by the client.
func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var req model.CompletePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result := checkout.ProviderResult{
		Succeeded:    req.Status == "succeeded",
		ErrorCode:    req.ErrorCode,
		ErrorMessage: req.ErrorMessage,
	}

	m := h.service.For(r.Context(), userID)
	if err := m.Complete(r.Context(), result); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, m.Status())
}

// Cancel handles POST /api/checkout/cancel requests.
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	m := h.service.For(r.Context(), userID)
	m.Cancel(r.Context())

	writeJSON(w, http.StatusOK, m.Status())
}

// Status handles GET /api/checkout requests.
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	m := h.service.For(r.Context(), userID)
	writeJSON(w, http.StatusOK, m.Status())
}
