// Package extract pulls SEO metadata out of HTML documents.
//
// The lookups are plain functions over a parsed goquery document so they can
// be tested without a network, and Extractor composes them behind the
// website.Extractor interface.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/serroba/page-analyzer/internal/website"
)

// Extractor parses HTML bodies with goquery.
type Extractor struct{}

// New creates an HTML metadata extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses body and returns its title, first h1 and meta description.
// Malformed HTML yields whatever could be recovered; missing elements yield
// empty strings.
func (e *Extractor) Extract(body string) website.Metadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return website.Metadata{}
	}

	return website.Metadata{
		Title:       Title(doc),
		H1:          FirstH1(doc),
		Description: MetaDescription(doc),
	}
}

// Title returns the text of the first title element inside head.
// Titles elsewhere, such as inline svg, are ignored.
func Title(doc *goquery.Document) string {
	return normalizeSpace(doc.Find("head title").First().Text())
}

// FirstH1 returns the text of the first h1 element in document order.
func FirstH1(doc *goquery.Document) string {
	return normalizeSpace(doc.Find("h1").First().Text())
}

// MetaDescription returns the content attribute of the first meta element
// whose name attribute is exactly "description".
func MetaDescription(doc *goquery.Document) string {
	var content string

	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if name, ok := s.Attr("name"); !ok || name != "description" {
			return true
		}

		content = s.AttrOr("content", "")

		return false
	})

	return content
}

// normalizeSpace trims s and collapses internal whitespace runs.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var _ website.Extractor = (*Extractor)(nil)
