package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"companion-marketplace/internal/config"
	"companion-marketplace/internal/usecase"
)

// Server is the HTTP surface of the marketplace: the versioned JSON API, the
// payment webhook, health and metrics.
type Server struct {
	cfg        *config.Config
	auth       *AuthManager
	explorerUC usecase.ExplorerUseCase
	tripUC     usecase.TripUseCase
	matchUC    usecase.MatchUseCase
	subUC      usecase.SubscriptionUseCase
	paymentUC  usecase.PaymentUseCase
	reviewUC   usecase.ReviewUseCase
	analysisUC usecase.AnalysisUseCase
	log        *zerolog.Logger
	server     *http.Server
}

func NewServer(
	cfg *config.Config,
	auth *AuthManager,
	explorerUC usecase.ExplorerUseCase,
	tripUC usecase.TripUseCase,
	matchUC usecase.MatchUseCase,
	subUC usecase.SubscriptionUseCase,
	paymentUC usecase.PaymentUseCase,
	reviewUC usecase.ReviewUseCase,
	analysisUC usecase.AnalysisUseCase,
	logger *zerolog.Logger,
) *Server {
	webLog := logger.With().Str("component", "web").Logger()
	return &Server{
		cfg:        cfg,
		auth:       auth,
		explorerUC: explorerUC,
		tripUC:     tripUC,
		matchUC:    matchUC,
		subUC:      subUC,
		paymentUC:  paymentUC,
		reviewUC:   reviewUC,
		analysisUC: analysisUC,
		log:        &webLog,
	}
}

// Router builds the full route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(traceID())
	r.Use(requestLog(s.log))
	r.Use(recoverer(s.log))
	r.Use(timeout(s.cfg.Server.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/plans", s.handleListPlans)
		r.Post("/webhooks/sslcommerz", s.handleSSLCommerzIPN)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(s.auth, s.explorerUC, s.log))

			r.Get("/me", s.handleGetMe)
			r.Put("/me", s.handleUpdateMe)
			r.Get("/me/analysis", s.handleMyAnalysis)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/analysis", s.handleAdminAnalysis)
			})

			r.Get("/subscriptions/me", s.handleMySubscription)

			r.Route("/payments", func(r chi.Router) {
				r.Post("/", s.handleInitiatePayment)
				r.Get("/{paymentID}", s.handleGetPayment)
			})

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", s.handleCreateTrip)
				r.Get("/", s.handleListTrips)
				r.Get("/available", s.handleListAvailableTrips)
				r.Get("/mine", s.handleListMyTrips)
				r.Get("/{tripID}", s.handleGetTrip)
				r.Put("/{tripID}", s.handleUpdateTrip)
				r.Delete("/{tripID}", s.handleDeleteTrip)
				r.Post("/{tripID}/status", s.handleTripStatus)
			})

			r.Route("/matches", func(r chi.Router) {
				r.Post("/", s.handleRequestMatch)
				r.Get("/mine", s.handleListMyMatches)
				r.Get("/{matchID}", s.handleGetMatch)
				r.Post("/{matchID}/accept", s.matchTransition(s.matchUC.Accept))
				r.Post("/{matchID}/reject", s.matchTransition(s.matchUC.Reject))
				r.Post("/{matchID}/cancel", s.matchTransition(s.matchUC.Cancel))
				r.Post("/{matchID}/complete", s.matchTransition(s.matchUC.Complete))
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Post("/", s.handleCreateReview)
				r.Get("/mine", s.handleListMyReviews)
				r.Get("/{reviewID}", s.handleGetReview)
				r.Put("/{reviewID}", s.handleUpdateReview)
				r.Delete("/{reviewID}", s.handleDeleteReview)

				r.Group(func(r chi.Router) {
					r.Use(requireAdmin)
					r.Get("/", s.handleListReviews)
					r.Post("/{reviewID}/moderate", s.handleModerateReview)
				})
			})
		})
	})

	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Msg("HTTP server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
