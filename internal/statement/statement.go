package statement

import "time"

// SectionID identifies one financial statement section on a company page.
type SectionID string

const (
	ProfitLoss       SectionID = "profit_loss"
	BalanceSheet     SectionID = "balance_sheet"
	CashFlow         SectionID = "cash_flow"
	QuarterlyResults SectionID = "quarterly_results"
)

// AllSections lists every statement section in page order.
var AllSections = []SectionID{ProfitLoss, BalanceSheet, CashFlow, QuarterlyResults}

// DOMID returns the element id that tags the section's region in page markup.
func (id SectionID) DOMID() string {
	switch id {
	case ProfitLoss:
		return "profit-loss"
	case BalanceSheet:
		return "balance-sheet"
	case CashFlow:
		return "cash-flow"
	case QuarterlyResults:
		return "quarters"
	}
	return string(id)
}

// Title returns the heading used by report and export renderers.
func (id SectionID) Title() string {
	switch id {
	case ProfitLoss:
		return "Profit & Loss"
	case BalanceSheet:
		return "Balance Sheet"
	case CashFlow:
		return "Cash Flow"
	case QuarterlyResults:
		return "Quarterly Results"
	}
	return string(id)
}

// ParseSection maps a section's wire name to its id.
func ParseSection(name string) (SectionID, bool) {
	switch id := SectionID(name); id {
	case ProfitLoss, BalanceSheet, CashFlow, QuarterlyResults:
		return id, true
	}
	return "", false
}

// RowNameKey holds the row's leading label in every Record.
const RowNameKey = "row_name"

// Record is one parsed table row: row_name plus one entry per column header.
// Header labels are zipped positionally against cells, so duplicate labels
// collapse; on a pathological "row_name" header the row_name field wins.
type Record map[string]string

// RowName returns the row's leading label.
func (r Record) RowName() string { return r[RowNameKey] }

// SectionResult is the ordered row sequence for one section. Empty means
// "no data or section missing" and is never an error.
type SectionResult []Record

// StatementSet holds the four section results that make up one document.
type StatementSet struct {
	ProfitLoss       SectionResult `json:"profit_loss"`
	BalanceSheet     SectionResult `json:"balance_sheet"`
	CashFlow         SectionResult `json:"cash_flow"`
	QuarterlyResults SectionResult `json:"quarterly_results"`
}

// Section returns the result stored for id.
func (s StatementSet) Section(id SectionID) SectionResult {
	switch id {
	case ProfitLoss:
		return s.ProfitLoss
	case BalanceSheet:
		return s.BalanceSheet
	case CashFlow:
		return s.CashFlow
	case QuarterlyResults:
		return s.QuarterlyResults
	}
	return nil
}

// SetSection stores the result for id, coercing nil to an empty sequence so
// sections always marshal as JSON arrays.
func (s *StatementSet) SetSection(id SectionID, res SectionResult) {
	if res == nil {
		res = SectionResult{}
	}
	switch id {
	case ProfitLoss:
		s.ProfitLoss = res
	case BalanceSheet:
		s.BalanceSheet = res
	case CashFlow:
		s.CashFlow = res
	case QuarterlyResults:
		s.QuarterlyResults = res
	}
}

// FinancialDocument is the full structured result for one company: all four
// statement sections plus extraction metadata. Assembled fresh per request
// and never mutated afterwards.
type FinancialDocument struct {
	StockName      string       `json:"stock_name"`
	ExtractionDate string       `json:"extraction_date"`
	Data           StatementSet `json:"data"`

	// columns keeps each section's resolved header order for renderers;
	// it does not appear in the JSON body.
	columns map[SectionID][]string
}

// NewFinancialDocument stamps an empty document for the given lookup name.
func NewFinancialDocument(stockName string, now time.Time) *FinancialDocument {
	d := &FinancialDocument{
		StockName:      stockName,
		ExtractionDate: now.Format(time.RFC3339),
		columns:        make(map[SectionID][]string),
	}
	for _, id := range AllSections {
		d.Data.SetSection(id, nil)
	}
	return d
}

// SetSection stores one section's rows together with its column order.
func (d *FinancialDocument) SetSection(id SectionID, columns []string, rows SectionResult) {
	d.Data.SetSection(id, rows)
	d.columns[id] = columns
}

// Columns returns the resolved column order for id, leading label column
// first. Empty for sections that yielded no table.
func (d *FinancialDocument) Columns(id SectionID) []string {
	return d.columns[id]
}
