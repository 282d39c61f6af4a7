package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/henarth-agravat/stockcard/internal/config"
	"github.com/henarth-agravat/stockcard/internal/extract"
	"github.com/henarth-agravat/stockcard/internal/screener"
)

// Server is the HTTP API server for stockcard.
type Server struct {
	router    chi.Router
	screener  *screener.Client
	extractor *extract.Extractor
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sc *screener.Client, ex *extract.Extractor, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		screener:  sc,
		extractor: ex,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api/health", s.handleHealth)

	r.Post("/api/stock-data", s.handleStockData)
	r.Get("/api/stock-data/export", s.handleExport)
	r.Get("/api/stock-data/report", s.handleReport)

	r.Get("/api/search-companies", s.handleSearchCompanies)

	r.Get("/api/annual-reports", s.handleAnnualReports)
	r.Post("/api/annual-reports/text", s.handleAnnualReportText)

	r.Get("/api/stats/upstream", s.handleUpstreamStats)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}`))
}
