package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/henarth-agravat/stockcard/internal/filing"
)

func (s *Server) handleAnnualReports(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("stockName"))
	if name == "" {
		jsonError(w, "Stock name is required", http.StatusBadRequest)
		return
	}

	company, page, status, err := s.fetchCompanyPage(r.Context(), name)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	links, err := filing.AnnualReports(page)
	if err != nil {
		s.log.Error("annual report listing failed", "company", company.Name, "error", err)
		jsonError(w, "failed to list annual reports", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"stock_name": company.Name,
		"reports":    links,
	})
}

type annualReportTextRequest struct {
	StockName string `json:"stockName"`
	URL       string `json:"url"`
}

func (s *Server) handleAnnualReportText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req annualReportTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.StockName)
	if name == "" {
		jsonError(w, "Stock name is required", http.StatusBadRequest)
		return
	}

	company, page, status, err := s.fetchCompanyPage(r.Context(), name)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	links, err := filing.AnnualReports(page)
	if err != nil {
		s.log.Error("annual report listing failed", "company", company.Name, "error", err)
		jsonError(w, "failed to list annual reports", http.StatusInternalServerError)
		return
	}
	if len(links) == 0 {
		jsonError(w, "no annual reports listed for company", http.StatusNotFound)
		return
	}

	// Only URLs listed on the fetched page are ever requested upstream.
	target := links[0]
	if want := strings.TrimSpace(req.URL); want != "" {
		found := false
		for _, l := range links {
			if l.URL == want {
				target = l
				found = true
				break
			}
		}
		if !found {
			jsonError(w, "url is not an annual report of this company", http.StatusBadRequest)
			return
		}
	}

	data, err := s.screener.FetchDocument(r.Context(), target.URL)
	if err != nil {
		s.log.Error("filing fetch failed", "url", target.URL, "error", err)
		jsonError(w, "failed to fetch annual report", http.StatusInternalServerError)
		return
	}

	text, pages, err := filing.Text(data)
	if err != nil {
		s.log.Error("filing text extraction failed", "url", target.URL, "error", err)
		jsonError(w, "failed to extract report text", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"stock_name": company.Name,
		"title":      target.Title,
		"url":        target.URL,
		"pages":      pages,
		"text":       text,
	})
}
