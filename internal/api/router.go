package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/creamcroissant/ovenboard/internal/api/handler"
	"github.com/creamcroissant/ovenboard/internal/api/middleware"
	"github.com/creamcroissant/ovenboard/internal/service"
)

// Dependencies carries everything the router needs to assemble routes.
type Dependencies struct {
	Logger        *slog.Logger
	Registry      *prometheus.Registry
	Orders        service.OrderService
	Notifications service.NotificationService
	Version       string
}

// NewRouter assembles the dashboard HTTP routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	logCfg := middleware.DefaultLoggingConfig()
	logCfg.Logger = deps.Logger

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(logCfg))
	r.Use(chimiddleware.Recoverer)
	if deps.Registry != nil {
		metricsCfg := middleware.DefaultMetricsConfig()
		r.Use(middleware.NewMetrics(metricsCfg, deps.Registry).Middleware(metricsCfg))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + deps.Version + `"}`))
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	orders := handler.NewOrderHandler(deps.Orders)
	notifications := handler.NewNotificationHandler(deps.Notifications)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orders.List)
			r.Get("/{id}", orders.Get)
			r.Patch("/{id}/status", orders.UpdateStatus)
			r.Get("/{id}/history", orders.History)
			r.Get("/{id}/elapsed", orders.Elapsed)
			r.Get("/{id}/elapsed/stream", orders.ElapsedStream)
		})
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notifications.List)
			r.Post("/", notifications.Add)
			r.Get("/unread-count", notifications.UnreadCount)
			r.Get("/stream", notifications.Stream)
			r.Post("/read-all", notifications.MarkAllRead)
			r.Post("/{id}/read", notifications.MarkRead)
			r.Delete("/", notifications.ClearAll)
			r.Delete("/{id}", notifications.Delete)
		})
	})

	return r
}
