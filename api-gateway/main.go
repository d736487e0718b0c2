package main

import (
	"log"
	"net/http"

	"flash-delivery/api-gateway/internal/gateway"
	"flash-delivery/config"

	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()

	gw := gateway.NewGateway(gateway.Config{
		OrderSvcURL: cfg.OrderSvcURL,
		StaticDir:   cfg.StaticDir,
	}, &http.Client{})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Idempotency-Key"},
	})
	handler := c.Handler(gw.SetupRoutes())

	addr := ":" + cfg.GatewayPort
	log.Printf("[GATEWAY] starting on %s, proxying /api to %s", addr, cfg.OrderSvcURL)
	log.Fatal(http.ListenAndServe(addr, handler))
}
