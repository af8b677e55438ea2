package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rafaelquintero/bazario-backend/api/controllers"
	ordercontrollers "github.com/rafaelquintero/bazario-backend/api/controllers/orders"
	returncontrollers "github.com/rafaelquintero/bazario-backend/api/controllers/returns"
	walletcontrollers "github.com/rafaelquintero/bazario-backend/api/controllers/wallet"
	"github.com/rafaelquintero/bazario-backend/api/middleware"
	"github.com/rafaelquintero/bazario-backend/internal/orders"
	"github.com/rafaelquintero/bazario-backend/internal/returns"
	"github.com/rafaelquintero/bazario-backend/internal/wallet"
	"github.com/rafaelquintero/bazario-backend/pkg/config"
	"github.com/rafaelquintero/bazario-backend/pkg/enums"
	"github.com/rafaelquintero/bazario-backend/pkg/logger"
	"github.com/rafaelquintero/bazario-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	ordersSvc orders.Service,
	walletSvc wallet.Service,
	returnsSvc returns.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbP,
			"redis":    redisClient,
		}))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersSvc, logg))
			r.With(middleware.RequireRole(string(enums.ActorRoleCustomer), logg)).
				Post("/", ordercontrollers.Place(ordersSvc, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
			r.Post("/{orderId}/cancel", ordercontrollers.Cancel(ordersSvc, logg))
			r.With(middleware.RequireAnyRole(logg, string(enums.ActorRoleSeller), string(enums.ActorRoleAdmin))).
				Post("/{orderId}/status", ordercontrollers.AdvanceStatus(ordersSvc, logg))
		})

		r.Route("/returns", func(r chi.Router) {
			r.Get("/", returncontrollers.List(returnsSvc, logg))
			r.With(middleware.RequireRole(string(enums.ActorRoleCustomer), logg)).
				Post("/", returncontrollers.File(returnsSvc, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletcontrollers.Balance(walletSvc, cfg.Business, logg))
			r.Get("/transactions", walletcontrollers.Transactions(walletSvc, cfg.Business, logg))
			r.Post("/withdraw", walletcontrollers.Withdraw(walletSvc, cfg.Business, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.ActorRoleAdmin), logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/returns", func(r chi.Router) {
			r.Get("/", returncontrollers.List(returnsSvc, logg))
			r.Post("/{requestId}/resolve", returncontrollers.Resolve(returnsSvc, logg))
		})
		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", walletcontrollers.Balance(walletSvc, cfg.Business, logg))
			r.Get("/transactions", walletcontrollers.Transactions(walletSvc, cfg.Business, logg))
		})
	})

	return r
}
