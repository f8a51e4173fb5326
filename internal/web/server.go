// Package web serves the JSON API for quotes, analysis and the portfolio.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"SignalWatch/internal/analysis"
	"SignalWatch/internal/logger"
	"SignalWatch/internal/portfolio"
)

// Deps are the collaborators behind the API.
type Deps struct {
	Analyzer  *analysis.Analyzer
	Portfolio *portfolio.Manager
	Watchlist []string
	Valuation portfolio.ValuateOptions
	Log       *logger.Logger
}

// Server routes API requests to the analyzer and the portfolio manager.
type Server struct {
	Deps
	router *mux.Router
}

func NewServer(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	s := &Server{Deps: deps, router: mux.NewRouter()}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stock", s.handleStock).Methods(http.MethodGet)
	api.HandleFunc("/stocks", s.handleStocks).Methods(http.MethodGet)
	api.HandleFunc("/portfolio", s.handleGetPortfolio).Methods(http.MethodGet)
	api.HandleFunc("/portfolio", s.handlePostPortfolio).Methods(http.MethodPost)
	api.HandleFunc("/portfolio/valuation", s.handleValuation).Methods(http.MethodGet)
	s.router.Use(s.logRequests)
	return s
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.Log.Info("http server stopped")
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
