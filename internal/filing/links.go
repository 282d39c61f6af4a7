package filing

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// DocumentLink is one annual report linked from a company page.
type DocumentLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AnnualReports pulls the annual-report links out of a company page's
// documents region. Only absolute http(s) targets are kept; relative
// hrefs in that region point at navigation, not filings.
func AnnualReports(markup string) ([]DocumentLink, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	links := make([]DocumentLink, 0, 8)
	region := findByID(doc, "documents")
	if region == nil {
		return links, nil
	}
	// The annual-reports list sits in its own sub-block when present.
	if sub := findByClass(region, "annual-reports"); sub != nil {
		region = sub
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := getAttr(n, "href")
			if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
				title := textContent(n)
				if title == "" {
					title = href
				}
				links = append(links, DocumentLink{Title: title, URL: href})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(region)

	return links, nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && getAttr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := findByID(c, id); m != nil {
			return m
		}
	}
	return nil
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := findByClass(c, class); m != nil {
			return m
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(getAttr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent flattens an element's text, collapsing runs of whitespace.
// Link labels on the page wrap badges and line breaks inside the anchor.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
