package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-promo-campaign/internal/domain/ports/repository"
	"telegram-promo-campaign/internal/usecase"
)

// Server is the admin read surface over the campaign data.
type Server struct {
	codes     repository.CodeRepository
	users     repository.UserRepository
	gifts     repository.GiftRepository
	txm       repository.TransactionManager
	analytics usecase.AnalyticsUseCase
	apiKey    string
	log       *zerolog.Logger
}

func NewServer(
	codes repository.CodeRepository,
	users repository.UserRepository,
	gifts repository.GiftRepository,
	txm repository.TransactionManager,
	analytics usecase.AnalyticsUseCase,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		codes:     codes,
		users:     users,
		gifts:     gifts,
		txm:       txm,
		analytics: analytics,
		apiKey:    apiKey,
		log:       logger,
	}
}

// Router builds the admin API router. /health and /metrics are open;
// everything under /api/v1 is behind the auth middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/stats", statsHandler(s.codes, s.users))
		r.Get("/analytics", analyticsHandler(s.analytics))
		r.Get("/gifts", giftsListHandler(s.gifts))

		r.Route("/codes", func(r chi.Router) {
			r.Get("/", codesListHandler(s.codes))
			r.Get("/usedBy/{userID}", codesUsedByHandler(s.codes))
			r.Patch("/{id}/gift-give", giftGiveHandler(s.codes, s.gifts, s.txm, s.log))
			r.Delete("/{id}", codeDeleteHandler(s.codes))
		})
	})

	return r
}

// authMiddleware provides simple Bearer token authentication for the admin API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("Admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
