// Package structured pulls recipe metadata embedded in a page (JSON-LD and
// microdata) into a candidate recipe, and picks a representative image.
package structured

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"recipebox/internal/jsonvalue"
	"recipebox/internal/normalize"
	"recipebox/internal/recipe"
)

// Result is everything the extractor learned from one page.
type Result struct {
	// Recipe is the usable structured candidate, or nil.
	Recipe *recipe.Recipe
	// Found reports whether any recipe node was present, usable or not.
	Found bool
	// NeedsEnrichment is set when the candidate has flat grouping or no tips.
	NeedsEnrichment bool
	// ImageURL is the absolute page image, or "".
	ImageURL string
	// Text is the visible page text.
	Text string
}

// Extractor holds the heading rules applied to structured ingredient lists.
type Extractor struct {
	Headers normalize.HeaderRules
}

// New returns an Extractor using the given heading rules.
func New(headers normalize.HeaderRules) *Extractor {
	return &Extractor{Headers: headers}
}

// page is the single-pass view of the document the extractor needs.
type page struct {
	jsonLD    []string
	meta      map[string]string
	microdata []*html.Node
	text      string
}

// Extract parses markup fetched from pageURL.
func (e *Extractor) Extract(markup, pageURL string) (Result, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse html: %w", err)
	}
	p := scan(doc)

	res := Result{Text: p.text}

	node := findJSONLDRecipe(p.jsonLD)
	if node == nil {
		for _, scope := range p.microdata {
			if item := microdataItem(scope); item != nil {
				node = item
				break
			}
		}
	}
	res.Found = node != nil

	res.ImageURL = pageImage(p.meta, node, pageURL)

	if node != nil {
		if cand := e.candidate(node); cand != nil {
			cand.ImageURL = recipe.StringPtr(res.ImageURL)
			res.Recipe = cand
			res.NeedsEnrichment = !cand.HasCustomGroup() || len(cand.Tips) == 0
		}
	}
	return res, nil
}

// VisibleText returns the text a reader would see, one block per line.
func VisibleText(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	return scan(doc).text
}

var skipText = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "svg": true, "head": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "tr": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "ul": true, "ol": true,
	"header": true, "footer": true, "main": true, "table": true, "blockquote": true,
}

func scan(doc *html.Node) page {
	p := page{meta: make(map[string]string)}
	var buf strings.Builder

	var f func(n *html.Node, visible bool)
	f = func(n *html.Node, visible bool) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); visible && text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				if strings.EqualFold(strings.TrimSpace(attr(n, "type")), "application/ld+json") {
					p.jsonLD = append(p.jsonLD, nodeText(n))
				}
				return
			case "meta":
				key := strings.ToLower(attr(n, "property"))
				if key == "" {
					key = strings.ToLower(attr(n, "name"))
				}
				if content := strings.TrimSpace(attr(n, "content")); key != "" && content != "" {
					if _, seen := p.meta[key]; !seen {
						p.meta[key] = content
					}
				}
			}
			if hasAttr(n, "itemscope") && !hasAttr(n, "itemprop") && isRecipeType(attr(n, "itemtype")) {
				p.microdata = append(p.microdata, n)
			}
			if skipText[n.Data] {
				visible = false
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c, visible)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			buf.WriteString("\n")
		}
	}
	f(doc, true)

	p.text = tidyText(buf.String())
	return p
}

// blockText is nodeText for markup fragments: hidden elements are skipped and
// block elements end in a newline.
func blockText(n *html.Node) string {
	var buf strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && skipText[n.Data]:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			buf.WriteString("\n")
		}
	}
	f(n)
	return buf.String()
}

func tidyText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func findJSONLDRecipe(blocks []string) *jsonvalue.Value {
	for _, block := range blocks {
		root, err := jsonvalue.Parse([]byte(strings.TrimSpace(block)))
		if err != nil {
			continue
		}
		var found *jsonvalue.Value
		jsonvalue.Walk(root, func(v *jsonvalue.Value) bool {
			if v.Kind == jsonvalue.Object && typeIsRecipe(v.Get("@type")) {
				found = v
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

func typeIsRecipe(t *jsonvalue.Value) bool {
	if s, ok := t.Str(); ok {
		return isRecipeType(s)
	}
	for _, item := range t.Items() {
		if s, ok := item.Str(); ok && isRecipeType(s) {
			return true
		}
	}
	return false
}

// isRecipeType matches "Recipe", "schema:Recipe" or "https://schema.org/Recipe",
// case-insensitively. Space-separated microdata type lists match on any entry.
func isRecipeType(s string) bool {
	for _, t := range strings.Fields(s) {
		if i := strings.LastIndexAny(t, "/:#"); i >= 0 {
			t = t[i+1:]
		}
		if strings.EqualFold(t, "recipe") {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return buf.String()
}
