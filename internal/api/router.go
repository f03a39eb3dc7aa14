package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "nyc-trip-loader/docs" // swagger document
	"nyc-trip-loader/internal/api/handler"
	"nyc-trip-loader/pkg/router"
)

// RegisterRoutes mounts the trips and runs endpoints, the swagger UI and,
// when given, the metrics handler.
func RegisterRoutes(r *router.Router, h *handler.Handler, metrics http.Handler) {
	r.GET("/api/v1/trips/kpis", h.GetKPIs)
	r.GET("/api/v1/trips/peak-valley", h.GetPeakValley)
	r.GET("/api/v1/trips/predict", h.GetPrediction)
	r.GET("/api/v1/trips/hourly", h.GetHourly)
	r.GET("/api/v1/trips/zones", h.GetZones)
	r.GET("/api/v1/trips/histogram", h.GetHistogram)
	r.GET("/api/v1/trips/top-zones", h.GetTopZones)
	r.GET("/api/v1/trips/alert", h.GetAlert)

	r.GET("/api/v1/runs", h.ListRuns)
	r.GET("/api/v1/runs/*", h.GetRun)

	r.Handle("/swagger/*", httpSwagger.WrapHandler)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
}
