package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (s *Server) handleSearchCompanies(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		jsonError(w, "Search query is required", http.StatusBadRequest)
		return
	}

	companies, err := s.screener.Search(r.Context(), query)
	if err != nil {
		s.log.Error("company search failed", "query", query, "error", err)
		jsonError(w, "failed to search for company", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(companies)
}
