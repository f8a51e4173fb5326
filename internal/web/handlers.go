package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"SignalWatch/internal/model"
	"SignalWatch/internal/portfolio"
)

type signalPair struct {
	Buy  model.SignalResult `json:"buy"`
	Sell model.SignalResult `json:"sell"`
}

type analyzeResponse struct {
	Quote    *model.Quote     `json:"quote"`
	History  []model.PriceBar `json:"history"`
	Analysis signalPair       `json:"analysis"`
}

// handleStock serves GET /api/stock?symbol=&action=quote|history|analyze.
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "Symbol parameter is required")
		return
	}
	action := q.Get("action")
	if action == "" {
		action = "quote"
	}
	period := model.Period(q.Get("period"))
	if !period.Valid() {
		period = model.Period6mo
	}
	interval := model.Interval(q.Get("interval"))
	if !interval.Valid() {
		interval = model.Interval1d
	}

	fetcher := s.Analyzer.Fetcher()
	switch action {
	case "quote":
		quote, err := fetcher.FetchQuote(r.Context(), symbol)
		if err != nil {
			s.Log.Warn("quote failed", zap.String("symbol", symbol), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch stock data")
			return
		}
		writeJSON(w, http.StatusOK, quote)
	case "history":
		bars, err := fetcher.FetchHistory(r.Context(), symbol, period, interval)
		if err != nil {
			s.Log.Warn("history failed", zap.String("symbol", symbol), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch stock history")
			return
		}
		if bars == nil {
			bars = []model.PriceBar{}
		}
		writeJSON(w, http.StatusOK, bars)
	case "analyze":
		a, err := s.Analyzer.Analyze(r.Context(), symbol, period, interval)
		if err != nil {
			s.Log.Warn("analyze failed", zap.String("symbol", symbol), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch stock data")
			return
		}
		writeJSON(w, http.StatusOK, analyzeResponse{
			Quote:    a.Quote,
			History:  a.History,
			Analysis: signalPair{Buy: a.Buy, Sell: a.Sell},
		})
	default:
		writeError(w, http.StatusBadRequest, "Invalid action parameter")
	}
}

// handleStocks serves GET /api/stocks?action=analyze, the watchlist screener.
func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("action") != "analyze" {
		writeError(w, http.StatusBadRequest, "Invalid action")
		return
	}
	writeJSON(w, http.StatusOK, s.Analyzer.ScreenBuy(r.Context(), s.Watchlist))
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Portfolio.Snapshot())
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, portfolio.Valuate(r.Context(), s.Portfolio.Snapshot(), s.Analyzer.Fetcher(), s.Valuation))
}

type portfolioRequest struct {
	Action string `json:"action"`
	portfolio.Purchase
	Updates *portfolio.HoldingUpdate `json:"updates"`
}

// handlePostPortfolio serves POST /api/portfolio with action add, update,
// remove or analyze.
func (s *Server) handlePostPortfolio(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Action {
	case "add":
		p, err := s.Portfolio.Add(r.Context(), req.Purchase)
		switch {
		case errors.Is(err, portfolio.ErrInvalidPurchase):
			writeError(w, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, portfolio.ErrUnknownSymbol):
			writeError(w, http.StatusBadRequest, "Invalid stock symbol")
		case err != nil:
			s.Log.Error("add holding", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to process request")
		default:
			writeJSON(w, http.StatusOK, p)
		}
	case "update":
		if req.Symbol == "" || req.Updates == nil {
			writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		p, err := s.Portfolio.Update(req.Symbol, *req.Updates)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, p)
	case "remove":
		if req.Symbol == "" {
			writeError(w, http.StatusBadRequest, "Symbol parameter is required")
			return
		}
		writeJSON(w, http.StatusOK, s.Portfolio.Remove(req.Symbol))
	case "analyze":
		writeJSON(w, http.StatusOK, s.Analyzer.SellSignals(r.Context(), s.Portfolio.Snapshot()))
	default:
		writeError(w, http.StatusBadRequest, "Invalid action parameter")
	}
}
