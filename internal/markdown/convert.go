// Package markdown turns extracted page HTML into vault notes: the Markdown
// body, its front-matter header and the file name it is stored under.
package markdown

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/vaultcrawl/internal/utils/url"
)

// rewriters is the closed set of element-specific rewrite strategies. Any
// element not listed here is handled by the converter's default rules.
var rewriters = map[string]func(baseURL string) md.Rule{
	"img": imageRule,
	"a":   linkRule,
}

// Convert renders html as Markdown, resolving image and link targets against
// baseURL. It performs no I/O and holds no state between calls.
func Convert(html, baseURL string) (string, error) {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:   "atx",
		CodeBlockStyle: "fenced",
	})
	converter.Use(plugin.GitHubFlavored())

	for _, rule := range rewriters {
		converter.AddRules(rule(baseURL))
	}

	out, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return out, nil
}

// imageRule emits ![alt](src) with src made absolute. Images without a
// usable source are dropped.
func imageRule(baseURL string) md.Rule {
	return md.Rule{
		Filter: []string{"img"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			alt, _ := selec.Attr("alt")
			src, _ := selec.Attr("src")
			src = strings.TrimSpace(src)
			if src != "" {
				src = urlutil.ResolveURL(baseURL, src)
			}
			if src == "" {
				return md.String("")
			}
			return md.String(fmt.Sprintf("![%s](%s)", alt, src))
		},
	}
}

// linkRule emits [text](href) with href absolute and its fragment removed.
// Anchors without an href collapse to their text.
func linkRule(baseURL string) md.Rule {
	return md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, _ := selec.Attr("href")
			href = strings.TrimSpace(href)
			if href == "" {
				return md.String(content)
			}
			href = urlutil.ResolveWithoutFragment(baseURL, href)
			return md.String(fmt.Sprintf("[%s](%s)", content, href))
		},
	}
}
