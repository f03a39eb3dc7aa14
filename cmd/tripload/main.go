package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"nyc-trip-loader/internal/config"
	"nyc-trip-loader/internal/model"
	"nyc-trip-loader/internal/pipeline"
	"nyc-trip-loader/internal/store"
	"nyc-trip-loader/pkg/utils"
)

func main() {
	spec, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, config.ErrInvalid) {
			log.Printf("❌ %v", err)
			os.Exit(2)
		}
		log.Fatalf("❌ %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	db, err := store.Open(ctx, spec.Database.Driver, spec.Database.URL, spec.Database.Table)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer db.Close()

	httpTransport := pipeline.NewHTTPTransport(utils.ParseDuration(spec.HTTPTimeout, 10*time.Minute))
	transport := pipeline.SchemeTransport{
		"http":  httpTransport,
		"https": httpTransport,
	}
	if strings.HasPrefix(spec.Source.BaseURL, "s3://") {
		s3, err := pipeline.NewS3Transport(spec.Source.S3Region)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		transport["s3"] = s3
	}

	deps := pipeline.Dependencies{
		Transport: transport,
		Store:     db,
		Metrics:   pipeline.NewMetrics(),
	}
	if spec.Ledger {
		deps.Ledger = db
	}

	summary := pipeline.NewLoader(*spec, deps).Run(ctx)

	if err := deps.Metrics.WriteTextfile(spec.MetricsTextfile); err != nil {
		log.Printf("⚠️ %v", err)
	}

	if summary.Status == model.RunStatusInterrupted {
		db.Close()
		os.Exit(130)
	}
}
