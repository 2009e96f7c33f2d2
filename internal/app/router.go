package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-commerce/meridian/internal/catalog/combinations"
	"github.com/meridian-commerce/meridian/internal/catalog/products"
	"github.com/meridian-commerce/meridian/internal/catalog/warehouses"
	"github.com/meridian-commerce/meridian/internal/fulfillment"
	"github.com/meridian-commerce/meridian/internal/inventory"
	"github.com/meridian-commerce/meridian/internal/observability"
	"github.com/meridian-commerce/meridian/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	InventoryHandler    *inventory.Handler
	ProductHandler      *products.Handler
	WarehouseHandler    *warehouses.Handler
	CombinationHandler  *combinations.Handler
	FulfillmentHandler  *fulfillment.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/inventory", params.InventoryHandler.MountRoutes)
	r.Route("/catalog/products", func(r chi.Router) {
		params.ProductHandler.MountRoutes(r)
		if params.CombinationHandler != nil {
			r.Route("/{id}/combinations", params.CombinationHandler.MountRoutes)
		}
	})
	r.Route("/catalog/warehouses", params.WarehouseHandler.MountRoutes)
	if params.FulfillmentHandler != nil {
		r.Route("/fulfillment/shipments", params.FulfillmentHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
