package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/henarth-agravat/stockcard/internal/statement"
)

// Extractor turns raw company-page markup into structured statement data.
type Extractor struct {
	notify NoticeFunc
}

// NewExtractor builds an extractor. notify may be nil.
func NewExtractor(notify NoticeFunc) *Extractor {
	return &Extractor{notify: notify}
}

// Assemble extracts all four statement sections from one page and stamps the
// result with the lookup name and the extraction time. Sections are
// independent: a missing or broken section leaves the others intact.
func (e *Extractor) Assemble(markup, stockName string) *statement.FinancialDocument {
	doc := statement.NewFinancialDocument(stockName, time.Now())

	page, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		for _, id := range statement.AllSections {
			e.emit(Notice{Section: id, Reason: NoticeParseFailed, Detail: err.Error()})
		}
		return doc
	}

	for _, id := range statement.AllSections {
		columns, rows := e.section(page, id)
		doc.SetSection(id, columns, rows)
	}
	return doc
}

// Section extracts a single section from raw markup. Every failure mode
// degrades to an empty result, never an error.
func (e *Extractor) Section(markup string, id statement.SectionID) statement.SectionResult {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		e.emit(Notice{Section: id, Reason: NoticeParseFailed, Detail: err.Error()})
		return statement.SectionResult{}
	}
	_, rows := e.section(page, id)
	return rows
}

func (e *Extractor) section(page *goquery.Document, id statement.SectionID) ([]string, statement.SectionResult) {
	region := page.Find("section#" + id.DOMID())
	if region.Length() == 0 {
		e.emit(Notice{Section: id, Reason: NoticeSectionMissing, Detail: "no region with id " + id.DOMID()})
		return nil, statement.SectionResult{}
	}

	table := region.First().Find("table.data-table").First()
	if table.Length() == 0 {
		e.emit(Notice{Section: id, Reason: NoticeTableMissing, Detail: "no data table in region " + id.DOMID()})
		return nil, statement.SectionResult{}
	}

	headers := resolveHeaders(table)
	kept := statement.SectionResult{}
	for _, rec := range extractRows(table, headers) {
		if keepRecord(rec, headers) {
			kept = append(kept, rec)
		}
	}
	return headers.Labels, kept
}

func (e *Extractor) emit(n Notice) {
	if e.notify != nil {
		e.notify(n)
	}
}
