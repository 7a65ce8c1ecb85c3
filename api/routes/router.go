package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sunshinecoast4wd/booking-engine/api/controllers"
	"github.com/sunshinecoast4wd/booking-engine/api/middleware"
	"github.com/sunshinecoast4wd/booking-engine/internal/booking"
	"github.com/sunshinecoast4wd/booking-engine/internal/catalog"
	"github.com/sunshinecoast4wd/booking-engine/pkg/config"
	"github.com/sunshinecoast4wd/booking-engine/pkg/db"
	"github.com/sunshinecoast4wd/booking-engine/pkg/logger"
	"github.com/sunshinecoast4wd/booking-engine/pkg/redis"
)

// NewRouter wires the engine's HTTP surface. Every /api/v1 route runs inside
// a booking session resolved from the X-Booking-Session header.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gatherer prometheus.Gatherer,
	catalogService catalog.Service,
	bookingService booking.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BookingSession(logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogListing(catalogService, logg))
			r.Get("/tours", controllers.CatalogTours(catalogService, logg))
			r.Get("/addons", controllers.CatalogAddOns(catalogService, logg))
			r.Get("/category-steps", controllers.CategorySteps(catalogService, logg))
			r.Post("/refresh", controllers.CatalogRefresh(catalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(bookingService, logg))
			r.Delete("/", controllers.CartClear(bookingService, logg))
			r.Post("/tour", controllers.CartSetTour(bookingService, logg))
			r.Put("/participants", controllers.CartSetParticipants(bookingService, logg))
			r.Post("/addons", controllers.CartAddAddOn(bookingService, logg))
			r.Patch("/addons/{addonId}", controllers.CartUpdateAddOn(bookingService, logg))
			r.Delete("/addons/{addonId}", controllers.CartRemoveAddOn(bookingService, logg))
		})

		r.Route("/flow", func(r chi.Router) {
			r.Get("/steps", controllers.FlowSteps(bookingService, logg))
			r.Post("/next", controllers.FlowNext(bookingService, logg))
			r.Post("/skip", controllers.FlowSkip(bookingService, logg))
			r.Post("/previous", controllers.FlowPrevious(bookingService, logg))
			r.Post("/goto", controllers.FlowGoTo(bookingService, logg))
			r.Post("/reset", controllers.FlowReset(bookingService, logg))
		})

		r.Get("/recommendations", controllers.Recommendations(catalogService, bookingService, logg))
	})

	return r
}
