package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"lastbite/internal/cart"
	"lastbite/internal/middleware"
	"lastbite/internal/model"

	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	carts  *cart.Store
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts *cart.Store, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	c := h.carts.Get(r.Context(), userID)
	writeJSON(w, http.StatusOK, c.Response())
}

// AddItem handles POST /api/cart/items requests. The body is the offer
// snapshot to add; one unit is added per request.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var offer model.Offer
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if offer.ID == "" || offer.DiscountedPrice < 0 {
		writeDomainError(w, model.ErrInvalidOffer, h.logger)
		return
	}

	c := h.carts.Get(r.Context(), userID)
	c.Add(offer)

	h.logger.Debug().
		Str("user_id", userID).
		Str("offer_id", offer.ID).
		Msg("offer added to cart")

	writeJSON(w, http.StatusOK, c.Response())
}

// UpdateItem handles PUT /api/cart/items/{offerId} requests. A quantity of
// zero or below removes the item.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	offerID := offerIDFromPath(r.URL.Path)
	if offerID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "offer ID is required", h.logger)
		return
	}

	var req model.UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	c := h.carts.Get(r.Context(), userID)
	c.UpdateQuantity(offerID, req.Quantity)

	writeJSON(w, http.StatusOK, c.Response())
}

// RemoveItem handles DELETE /api/cart/items/{offerId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	offerID := offerIDFromPath(r.URL.Path)
	if offerID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "offer ID is required", h.logger)
		return
	}

	c := h.carts.Get(r.Context(), userID)
	c.Remove(offerID)

	writeJSON(w, http.StatusOK, c.Response())
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	c := h.carts.Get(r.Context(), userID)
	c.Clear()

	writeJSON(w, http.StatusOK, c.Response())
}

// offerIDFromPath extracts the offer id from /api/cart/items/{offerId}.
func offerIDFromPath(path string) string {
	const prefix = "/api/cart/items/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	return strings.Trim(path[len(prefix):], "/")
}
