// Package extract applies the content-extraction policy to a parsed page:
// pick the main content container, strip page chrome, list outbound links.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/vaultcrawl/internal/utils/url"
)

const (
	// ContentSelector picks the semantic content container, first match in document order.
	ContentSelector = "article, main"
	// StripSelector lists the elements removed from the content container.
	StripSelector = "script, style, nav, header, footer, aside"
)

// Parse builds a goquery document from raw HTML.
func Parse(rawHTML string) (*goquery.Document, error) {
	return ParseReader(strings.NewReader(rawHTML))
}

// ParseReader builds a goquery document from r.
func ParseReader(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Title returns the trimmed document title.
func Title(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// MainContent returns the inner HTML of the content container with page
// chrome removed. The document itself is left untouched.
func MainContent(doc *goquery.Document) (string, error) {
	if doc == nil {
		return "", nil
	}

	container := doc.Find(ContentSelector).First()
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}
	if container.Length() == 0 {
		return "", nil
	}

	clean := container.Clone()
	clean.Find(StripSelector).Remove()

	out, err := clean.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize content: %w", err)
	}
	return out, nil
}

// MainContentHTML is MainContent for an HTML string.
func MainContentHTML(rawHTML string) (string, error) {
	doc, err := Parse(rawHTML)
	if err != nil {
		return "", err
	}
	return MainContent(doc)
}

// Links returns every anchor's href resolved against the document base, in
// document order. Anchors without an href are skipped, nothing is deduplicated.
func Links(doc *goquery.Document, pageURL string) []string {
	if doc == nil {
		return nil
	}

	base := pageURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		base = urlutil.ResolveURL(pageURL, strings.TrimSpace(href))
	}

	links := []string{}
	doc.Find("a").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		links = append(links, urlutil.ResolveURL(base, strings.TrimSpace(href)))
	})
	return links
}
