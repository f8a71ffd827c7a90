package router

import (
	"net/http"
	"strings"

	"lastbite/internal/auth"
	"lastbite/internal/handler"
	"lastbite/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	authManager *auth.Manager,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Cart routes
	cartRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			cartHandler.Get(w, r)
		case r.Method == http.MethodDelete:
			cartHandler.Clear(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
	mux.HandleFunc("/api/cart", cartRouteHandler)

	cartItemsRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		// POST /api/cart/items adds an item; PUT and DELETE address a
		// specific item by offer id.
		if r.Method == http.MethodPost && (r.URL.Path == "/api/cart/items" || r.URL.Path == "/api/cart/items/") {
			cartHandler.AddItem(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/cart/items/") && r.URL.Path != "/api/cart/items/" {
			switch r.Method {
			case http.MethodPut:
				cartHandler.UpdateItem(w, r)
			case http.MethodDelete:
				cartHandler.RemoveItem(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	}
	mux.HandleFunc("/api/cart/items", cartItemsRouteHandler)
	mux.HandleFunc("/api/cart/items/", cartItemsRouteHandler)

	// Checkout routes
	checkoutRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/checkout" || r.URL.Path == "/api/checkout/" {
			switch r.Method {
			case http.MethodPost:
				checkoutHandler.Begin(w, r)
			case http.MethodGet:
				checkoutHandler.Status(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		switch strings.TrimSuffix(r.URL.Path, "/") {
		case "/api/checkout/payment":
			checkoutHandler.RetryPayment(w, r)
		case "/api/checkout/pay":
			checkoutHandler.Pay(w, r)
		case "/api/checkout/complete":
			checkoutHandler.Complete(w, r)
		case "/api/checkout/cancel":
			checkoutHandler.Cancel(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.HandleFunc("/api/checkout", checkoutRouteHandler)
	mux.HandleFunc("/api/checkout/", checkoutRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS -> JWTAuth
	var h http.Handler = mux
	h = middleware.JWTAuth(authManager, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
