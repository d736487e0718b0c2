package httpapi

import (
	"log"
	"net/http"

	"flash-delivery/order-svc/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func NewCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Idempotency-Key"},
	})
}

// NewRouter builds the order-svc HTTP surface. reg may be nil, in which case
// /metrics is not served.
func NewRouter(handler *Handler, reg *metrics.Registry) http.Handler {
	r := mux.NewRouter()
	if reg != nil {
		r.Handle("/metrics", reg.Handler()).Methods("GET")
		r.Use(AccessLog(reg))
	} else {
		r.Use(AccessLog(nil))
	}
	handler.RegisterRoutes(r)
	return NewCORS().Handler(r)
}

func StartServer(addr string, handler http.Handler) {
	log.Printf("Order Service starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
