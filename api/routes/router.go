package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bouncehq/rentals-backend/api/controllers"
	"github.com/bouncehq/rentals-backend/api/middleware"
	"github.com/bouncehq/rentals-backend/internal/orders"
	"github.com/bouncehq/rentals-backend/internal/pricingrules"
	"github.com/bouncehq/rentals-backend/internal/quotes"
	"github.com/bouncehq/rentals-backend/pkg/config"
	"github.com/bouncehq/rentals-backend/pkg/db"
	"github.com/bouncehq/rentals-backend/pkg/enums"
	"github.com/bouncehq/rentals-backend/pkg/logger"
	"github.com/bouncehq/rentals-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsRegistry *prometheus.Registry,
	quotesService quotes.Service,
	travelCalculator *quotes.TravelCalculator,
	rulesService pricingrules.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// A typed nil *redis.Client inside a non-nil interface would defeat the
	// nil checks downstream, so the conversions stay explicit.
	var redisPinger redis.Pinger
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		redisPinger = redisClient
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public/v1", func(r chi.Router) {
		if redisClient != nil {
			r.Use(middleware.QuoteRateLimit(cfg.RateLimit, redisClient, logg))
		}
		r.Post("/quotes", controllers.QuoteCreate(quotesService, logg))
		r.Post("/quotes/travel", controllers.TravelQuote(travelCalculator, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.ActorRoleAdmin, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/pricing-rules", func(r chi.Router) {
			r.Get("/", controllers.PricingRulesGet(rulesService, logg))
			r.Put("/", controllers.PricingRulesUpdate(rulesService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.AdminOrderCreate(ordersService, logg))
			r.Get("/", controllers.AdminOrderList(ordersService, logg))

			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderDetail(ordersService, logg))
				r.Get("/invoice", controllers.AdminOrderInvoice(ordersService, logg))
				r.Post("/confirm", controllers.AdminOrderConfirm(ordersService, logg))
				r.Post("/complete", controllers.AdminOrderComplete(ordersService, logg))
				r.Post("/cancel", controllers.AdminOrderCancel(ordersService, logg))
				r.Put("/waivers", controllers.AdminOrderSetWaiver(ordersService, logg))
				r.Post("/discounts", controllers.AdminOrderAddDiscount(ordersService, logg))
				r.Delete("/discounts/{name}", controllers.AdminOrderRemoveDiscount(ordersService, logg))
				r.Post("/custom-fees", controllers.AdminOrderAddCustomFee(ordersService, logg))
				r.Delete("/custom-fees/{name}", controllers.AdminOrderRemoveCustomFee(ordersService, logg))
				r.Put("/tip", controllers.AdminOrderSetTip(ordersService, logg))
				r.Put("/deposit", controllers.AdminOrderSetDeposit(ordersService, logg))
				r.Post("/payments", controllers.AdminOrderRecordPayment(ordersService, logg))
			})
		})
	})

	return r
}
