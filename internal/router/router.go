package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/cx-tal-miterani/flight-checkout/internal/handlers"
	"github.com/cx-tal-miterani/flight-checkout/internal/websocket"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, hub *websocket.Hub) http.Handler {
	r := mux.NewRouter()

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Sessions
	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/resume", h.ResumeSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)

	// Checkout transitions
	api.HandleFunc("/sessions/{id}/flights", h.SearchFlights).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/flight", h.SelectFlight).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/seat-class", h.ChangeSeatClass).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/coupon/check", h.CheckCoupon).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/coupon", h.ApplyCoupon).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/booking", h.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/payment-method", h.ChoosePaymentMethod).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/payment", h.SubmitPayment).Methods(http.MethodPost)

	// WebSocket for notifications
	api.HandleFunc("/sessions/{id}/ws", hub.HandleWebSocket).Methods(http.MethodGet)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}
