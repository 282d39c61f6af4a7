package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/henarth-agravat/stockcard/internal/report"
	"github.com/henarth-agravat/stockcard/internal/screener"
	"github.com/henarth-agravat/stockcard/internal/statement"
)

type stockDataRequest struct {
	StockName string `json:"stockName"`
}

func (s *Server) handleStockData(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req stockDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.StockName)
	if name == "" {
		jsonError(w, "Stock name is required", http.StatusBadRequest)
		return
	}

	doc, status, err := s.buildDocument(r.Context(), name)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("stockName"))
	if name == "" {
		jsonError(w, "Stock name is required", http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		jsonError(w, fmt.Sprintf("unsupported format %q", format), http.StatusBadRequest)
		return
	}

	// The csv export covers a single section; profit & loss unless told
	// otherwise.
	sectionID := statement.ProfitLoss
	if v := r.URL.Query().Get("section"); v != "" {
		id, ok := statement.ParseSection(v)
		if !ok {
			jsonError(w, fmt.Sprintf("unknown section %q", v), http.StatusBadRequest)
			return
		}
		sectionID = id
	}

	doc, status, err := s.buildDocument(r.Context(), name)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(doc.StockName)+`.xlsx"`)
		if err := report.WriteXLSX(doc, w); err != nil {
			s.log.Error("xlsx export failed", "company", doc.StockName, "error", err)
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(doc.StockName)+`.csv"`)
		if err := report.WriteCSV(doc, sectionID, w); err != nil {
			s.log.Error("csv export failed", "company", doc.StockName, "error", err)
		}
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("stockName"))
	if name == "" {
		jsonError(w, "Stock name is required", http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "md"
	}
	if format != "md" && format != "html" {
		jsonError(w, fmt.Sprintf("unsupported format %q", format), http.StatusBadRequest)
		return
	}

	doc, status, err := s.buildDocument(r.Context(), name)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	if format == "html" {
		page, err := report.HTML(doc)
		if err != nil {
			s.log.Error("report render failed", "company", doc.StockName, "error", err)
			jsonError(w, "failed to render report", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, page)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, report.Markdown(doc))
}

// resolveCompany picks the first search candidate for name. The int is
// the HTTP status to answer with when err is non-nil.
func (s *Server) resolveCompany(ctx context.Context, name string) (screener.Company, int, error) {
	candidates, err := s.screener.Search(ctx, name)
	if err != nil {
		s.log.Error("company search failed", "query", name, "error", err)
		return screener.Company{}, http.StatusInternalServerError, errors.New("failed to search for company")
	}
	if len(candidates) == 0 {
		return screener.Company{}, http.StatusNotFound, errors.New("No company found with the given name")
	}
	return candidates[0], 0, nil
}

// fetchCompanyPage resolves name and fetches the candidate's page markup.
func (s *Server) fetchCompanyPage(ctx context.Context, name string) (screener.Company, string, int, error) {
	company, status, err := s.resolveCompany(ctx, name)
	if err != nil {
		return screener.Company{}, "", status, err
	}
	page, err := s.screener.FetchPage(ctx, company.PagePath())
	if err != nil {
		s.log.Error("company page fetch failed", "company", company.Name, "path", company.PagePath(), "error", err)
		return screener.Company{}, "", http.StatusInternalServerError, errors.New("Failed to fetch stock data")
	}
	return company, page, 0, nil
}

// buildDocument runs the lookup-fetch-extract pipeline for one company.
func (s *Server) buildDocument(ctx context.Context, name string) (*statement.FinancialDocument, int, error) {
	company, page, status, err := s.fetchCompanyPage(ctx, name)
	if err != nil {
		return nil, status, err
	}
	return s.extractor.Assemble(page, company.Name), 0, nil
}

var filenameScrub = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func exportFilename(name string) string {
	name = filenameScrub.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		return "statements"
	}
	return name
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
