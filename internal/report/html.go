package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/henarth-agravat/stockcard/internal/statement"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTML renders the markdown report as a standalone HTML page.
func HTML(doc *statement.FinancialDocument) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(doc)), &body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(doc.StockName))
	b.WriteString("<style>table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
