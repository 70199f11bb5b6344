package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credit-portal/internal/api/handler"
	mw "credit-portal/internal/api/middleware"
	"credit-portal/internal/config"
	"credit-portal/internal/domain/loan"
	"credit-portal/internal/domain/offer"
	"credit-portal/internal/domain/user"
	"credit-portal/internal/infrastructure/logging"
)

type Services struct {
	Offers offer.Service
	Loans  loan.Service
	Users  user.Service
	Ring   *logging.RingBuffer
}

func SetupRouter(svcs Services, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, svcs, cfg, logger)
	setupPortalRoutes(router, svcs, cfg, logger)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	if svcs.Ring != nil {
		logsHandler := handler.NewLogsHandler(svcs.Ring, logger)
		router.Get("/logs/export", logsHandler.ExportLogs)
	}

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupAuthRoutes(router *chi.Mux, svcs Services, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(svcs.Users, cfg.Server.Auth, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})
}

func setupPortalRoutes(router *chi.Mux, svcs Services, cfg *config.Config, logger *slog.Logger) {
	offerHandler := handler.NewOfferHandler(svcs.Offers, logger)
	loanHandler := handler.NewLoanHandler(svcs.Loans, logger)
	portfolioHandler := handler.NewPortfolioHandler(svcs.Loans, logger)
	profileHandler := handler.NewProfileHandler(svcs.Users, svcs.Loans, logger)

	router.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))

		r.Route("/offers", func(r chi.Router) {
			r.Get("/", offerHandler.ListOffers)
			r.Get("/bank", offerHandler.ListBankOffers)
			r.Get("/private", offerHandler.ListPrivateOffers)
			r.Get("/search", offerHandler.SearchOffers)
			r.Get("/{offerID}", offerHandler.GetOffer)
		})

		r.Route("/loans", func(r chi.Router) {
			r.Post("/", loanHandler.TakeLoan)
			r.Get("/", loanHandler.ListLoans)
			r.Put("/{loanID}", loanHandler.EditLoan)
			r.Delete("/{loanID}", loanHandler.RepayLoan)
			r.Post("/{loanID}/payments", loanHandler.RecordPayment)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", portfolioHandler.GetPortfolio)
			r.Post("/limit", portfolioHandler.ChangeLimit)
		})

		r.Get("/profile", profileHandler.GetProfile)
	})
}
