// Package api exposes the liquidation records and analytics over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"liquidation-radar/internal/analytics"
	"liquidation-radar/internal/domain"
	"liquidation-radar/internal/observability"
	"liquidation-radar/internal/storage"
	"liquidation-radar/internal/view"
)

const (
	defaultLimit    = 10
	maxLimit        = 10000
	defaultPageSize = 50
	maxPageSize     = 1000
)

// Server serves the liquidation API.
type Server struct {
	store   storage.LiquidationStore
	logger  *log.Logger
	runID   string
	started time.Time
	served  atomic.Int64
}

// NewServer creates a new API server over the given store.
func NewServer(store storage.LiquidationStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:   store,
		logger:  logger,
		runID:   uuid.NewString(),
		started: time.Now(),
	}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/liquidations", s.instrument("/liquidations", s.handleLiquidations))
	mux.HandleFunc("/liquidations/view", s.instrument("/liquidations/view", s.handleView))
	mux.HandleFunc("/analytics", s.instrument("/analytics", s.handleAnalytics))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", observability.Handler())

	return mux
}

// statusWriter captures the response code for metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		s.served.Add(1)
		observability.RecordHTTPRequest(path, strconv.Itoa(sw.status), time.Since(start).Seconds())
	}
}

// liquidationsResponse is the paged record envelope.
type liquidationsResponse struct {
	Data       []*domain.LiquidationRecord `json:"data"`
	TotalCount int                         `json:"totalCount"`
	Limit      int                         `json:"limit"`
	Offset     int                         `json:"offset"`
}

// handleLiquidations serves GET /liquidations.
func (s *Server) handleLiquidations(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", defaultLimit)
	if !ok {
		return
	}
	offset, ok := intParam(w, r, "offset", 0)
	if !ok {
		return
	}

	if limit < 0 || offset < 0 {
		writeError(w, http.StatusBadRequest, "limit and offset must be non-negative")
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	records, total, err := s.store.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Printf("List failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []*domain.LiquidationRecord{}
	}

	writeJSON(w, liquidationsResponse{
		Data:       records,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	})
}

// viewResponse is the projected table envelope.
type viewResponse struct {
	Data            []*domain.LiquidationRecord `json:"data"`
	TotalMatchCount int                         `json:"totalMatchCount"`
	Page            int                         `json:"page"`
	PageSize        int                         `json:"pageSize"`
	Options         view.AssetOptions           `json:"options"`
}

// handleView serves GET /liquidations/view.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	minProfit, ok := floatParam(w, r, "minProfitUsd", 0)
	if !ok {
		return
	}
	page, ok := intParam(w, r, "page", 0)
	if !ok {
		return
	}
	pageSize, ok := intParam(w, r, "pageSize", defaultPageSize)
	if !ok {
		return
	}
	if page < 0 || pageSize <= 0 {
		writeError(w, http.StatusBadRequest, "page must be non-negative and pageSize positive")
		return
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	sortBy := view.SortKey(paramOr(r, "sortBy", string(view.SortByTimestamp)))
	switch sortBy {
	case view.SortByTimestamp, view.SortByProfit, view.SortByCollateral, view.SortByDebt:
	default:
		writeError(w, http.StatusBadRequest, "unknown sortBy: "+string(sortBy))
		return
	}

	order := view.Direction(paramOr(r, "order", string(view.Descending)))
	if order != view.Ascending && order != view.Descending {
		writeError(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}

	records, err := s.allRecords(r.Context())
	if err != nil {
		s.logger.Printf("Load records failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	f := view.Filter{
		CollateralAsset: r.URL.Query().Get("collateral"),
		DebtAsset:       r.URL.Query().Get("debt"),
		WalletSubstring: r.URL.Query().Get("wallet"),
		MinProfitUsd:    minProfit,
	}

	projected := view.Project(records, f, sortBy, order, page, pageSize)

	writeJSON(w, viewResponse{
		Data:            projected.Rows,
		TotalMatchCount: projected.TotalMatchCount,
		Page:            page,
		PageSize:        pageSize,
		Options:         view.Options(records, minProfit),
	})
}

// handleAnalytics serves GET /analytics.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	window := domain.TimeFilter(paramOr(r, "window", string(domain.TimeFilterMax)))
	if !window.Valid() {
		writeError(w, http.StatusBadRequest, "unknown window: "+string(window))
		return
	}

	minProfit, ok := floatParam(w, r, "minProfitUsd", 0)
	if !ok {
		return
	}

	records, err := s.allRecords(r.Context())
	if err != nil {
		s.logger.Printf("Load records failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	start := time.Now()
	result := analytics.Aggregate(records, window, minProfit, time.Now())
	observability.RecordAggregation(time.Since(start).Seconds())

	writeJSON(w, result)
}

// statusResponse is the JSON response for /status.
type statusResponse struct {
	Status         string `json:"status"`
	RunID          string `json:"run_id"`
	Uptime         string `json:"uptime"`
	RecordsStored  int    `json:"records_stored"`
	RequestsServed int64  `json:"requests_served"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Printf("Count failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, statusResponse{
		Status:         "running",
		RunID:          s.runID,
		Uptime:         time.Since(s.started).String(),
		RecordsStored:  count,
		RequestsServed: s.served.Load(),
	})
}

// allRecords loads the full record set for projection and analytics.
func (s *Server) allRecords(ctx context.Context) ([]*domain.LiquidationRecord, error) {
	return s.store.GetByTimeRange(ctx, 0, time.Now().Unix()+1)
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}

func floatParam(w http.ResponseWriter, r *http.Request, name string, def float64) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a number")
		return 0, false
	}
	return v, true
}

func paramOr(r *http.Request, name, def string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
