package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/varoOP/kinobot/internal/domain"
)

// Schema names the selectors that locate the fields on one site
type Schema struct {
	Title       string
	Description string
}

// LordfilmSchema matches the markup used by lordfilm mirrors
var LordfilmSchema = Schema{
	Title:       "h1",
	Description: "div.fdesc",
}

// Page holds the fields pulled out of a document
type Page struct {
	Title       string
	Description string
}

// Extractor pulls a title and description out of raw HTML.
// Parsing is best effort: anything missing degrades to a fallback.
type Extractor struct {
	Schema Schema
}

func New(schema Schema) *Extractor {
	return &Extractor{Schema: schema}
}

// Extract never fails. The title falls back to query and the description
// to domain.NoDescription when their elements are absent or blank.
func (e *Extractor) Extract(html []byte, query string) Page {
	page := Page{Title: query, Description: domain.NoDescription}
	if len(bytes.TrimSpace(html)) == 0 {
		return page
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return page
	}

	if t := collapse(doc.Find(e.Schema.Title).First().Text()); t != "" {
		page.Title = t
	}
	if d := collapse(doc.Find(e.Schema.Description).First().Text()); d != "" {
		page.Description = d
	}

	return page
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
