package main

import (
	"context"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nyc-trip-loader/internal/api"
	"nyc-trip-loader/internal/api/handler"
	"nyc-trip-loader/internal/config"
	"nyc-trip-loader/internal/store"
	"nyc-trip-loader/pkg/router"
)

// @title NYC Trips API
// @version 1.0
// @description Analytics over the sampled NYC taxi trips and the loader run history.
// @BasePath /api/v1
func main() {
	spec, err := config.LoadServer(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// Init DB
	db, err := store.Open(context.Background(), spec.Database.Driver, spec.Database.URL, spec.Database.Table)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer db.Close()

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r, handler.New(db, db), promhttp.Handler())

	// Start server
	if err := r.Start(spec.Addr); err != nil {
		log.Fatalf("❌ %v", err)
	}
}
