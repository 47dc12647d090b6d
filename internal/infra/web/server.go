package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/usecase"
)

// Server is the read-only admin surface: health, prometheus metrics, and a
// stats endpoint behind a JWT session. It never mutates bot state.
type Server struct {
	subUC  *usecase.SubscriptionUseCase
	pollUC *usecase.PollUseCase
	chatUC *usecase.ChatUseCase
	auth   *AuthManager
	apiKey string
	log    *zerolog.Logger
}

func NewServer(subUC *usecase.SubscriptionUseCase, pollUC *usecase.PollUseCase, chatUC *usecase.ChatUseCase, auth *AuthManager, apiKey string, logger *zerolog.Logger) *Server {
	webLog := logger.With().Str("component", "web").Logger()
	return &Server{
		subUC:  subUC,
		pollUC: pollUC,
		chatUC: chatUC,
		auth:   auth,
		apiKey: apiKey,
		log:    &webLog,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.With(s.requireSession).Get("/stats", s.handleStats)
	})
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-API-Key")
	if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if _, err := s.auth.Mint(w); err != nil {
		s.log.Error().Err(err).Msg("mint session failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.Verify(r); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statsResponse struct {
	ActiveWatches int `json:"activeWatches"`
	OpenPolls     int `json:"openPolls"`
	UsageRecords  int `json:"usageRecords"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var resp statsResponse
	var err error
	if resp.ActiveWatches, err = s.subUC.CountActive(ctx); err != nil {
		s.log.Error().Err(err).Msg("count watches failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if resp.OpenPolls, err = s.pollUC.CountOpen(ctx); err != nil {
		s.log.Error().Err(err).Msg("count polls failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if resp.UsageRecords, err = s.chatUC.UsageCount(ctx); err != nil {
		s.log.Error().Err(err).Msg("count usage failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
