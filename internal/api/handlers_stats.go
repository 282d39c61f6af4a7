package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleUpstreamStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"upstream": s.cfg.ScreenerBaseURL,
		"stats":    s.screener.Stats.Snapshot(),
	})
}
