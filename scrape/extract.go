package scrape

import (
	"cmp"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxFallbackParagraphs caps how many of the longest paragraphs make up the
// main text of a page without <article> or <main>.
const maxFallbackParagraphs = 10

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Metadata is what Extract recovers from a publication page.
// Empty strings and a zero Year mean the field was not found.
type Metadata struct {
	Title    string
	Authors  string
	Year     int
	Mission  string
	Organism string
	PDFURL   string
	Abstract string
	// Text is the page's main body text with whitespace collapsed.
	Text  string
	Extra map[string]string
}

// Body returns the text to chunk: the main text, else the abstract.
func (m *Metadata) Body() string {
	if strings.TrimSpace(m.Text) != "" {
		return m.Text
	}
	return m.Abstract
}

// Extract parses a publication page fetched from pageURL.
func Extract(document, pageURL string) (*Metadata, error) {
	if strings.TrimSpace(document) == "" {
		return nil, ErrEmptyDocument
	}
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, err
	}

	meta := &Metadata{
		Title:    collapse(textOf(find(root, isElement(atom.Title)))),
		Abstract: metaContent(root, "name", "description"),
	}
	if meta.Abstract == "" {
		meta.Abstract = metaContent(root, "property", "og:description")
	}

	meta.Authors = metaContent(root, "name", "author")
	if meta.Authors == "" {
		if n := find(root, hasAttr("itemprop", "author")); n != nil {
			meta.Authors = collapse(textOf(n))
		}
	}

	meta.PDFURL = firstPDFLink(root, pageURL)

	if m := yearPattern.FindString(strings.Join(nonEmpty(meta.Title, meta.Abstract), " ")); m != "" {
		meta.Year, _ = strconv.Atoi(m)
	}

	paragraphs := findAll(root, isElement(atom.P))
	meta.Text = mainText(root, paragraphs)

	meta.Extra = map[string]string{
		"fetched_url":      pageURL,
		"meta_title":       meta.Title,
		"meta_description": meta.Abstract,
		"pdf_url_found":    meta.PDFURL,
		"paragraph_count":  strconv.Itoa(len(paragraphs)),
	}
	return meta, nil
}

// mainText prefers the paragraphs inside <article>, then <main>, then the
// longest paragraphs on the page.
func mainText(root *html.Node, all []*html.Node) string {
	for _, container := range []atom.Atom{atom.Article, atom.Main} {
		if n := find(root, isElement(container)); n != nil {
			if text := joinParagraphs(findAll(n, isElement(atom.P))); text != "" {
				return text
			}
		}
	}

	texts := make([]string, 0, len(all))
	for _, p := range all {
		texts = append(texts, collapse(textOf(p)))
	}
	slices.SortStableFunc(texts, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	if len(texts) > maxFallbackParagraphs {
		texts = texts[:maxFallbackParagraphs]
	}
	return collapse(strings.Join(texts, " "))
}

func joinParagraphs(ps []*html.Node) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, collapse(textOf(p)))
	}
	return collapse(strings.Join(parts, " "))
}

func firstPDFLink(root *html.Node, pageURL string) string {
	for _, a := range findAll(root, isElement(atom.A)) {
		href := strings.TrimSpace(attr(a, "href"))
		if !strings.HasSuffix(strings.ToLower(href), ".pdf") {
			continue
		}
		if strings.HasPrefix(href, "http") {
			return href
		}
		base, err := url.Parse(pageURL)
		if err != nil {
			return href
		}
		ref, err := url.Parse(href)
		if err != nil {
			return href
		}
		return base.ResolveReference(ref).String()
	}
	return ""
}

func metaContent(root *html.Node, key, value string) string {
	n := find(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Meta && strings.EqualFold(attr(n, key), value)
	})
	if n == nil {
		return ""
	}
	return strings.TrimSpace(attr(n, "content"))
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == a
	}
}

func hasAttr(key, value string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, key) == value
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func find(root *html.Node, match func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if match(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := find(c, match); n != nil {
			return n
		}
	}
	return nil
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// textOf concatenates the text beneath n, separating nodes with spaces and
// skipping script and style bodies.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
