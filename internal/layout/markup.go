package layout

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParseMarkup reads page markup in the form produced by page-to-HTML
// exporters: one <div id="pageN"> per page holding absolutely positioned
// <p style="top:..pt;left:..pt"> elements with styled <span> children.
// Markup without page divs is read as a single page.
func ParseMarkup(r io.Reader) ([]Page, []Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse markup: %w", err)
	}

	var pageNodes []*html.Node
	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && isPageID(attr(n, "id")) {
			pageNodes = append(pageNodes, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)
	if len(pageNodes) == 0 {
		if body := findElement(doc, "body"); body != nil {
			pageNodes = []*html.Node{body}
		} else {
			pageNodes = []*html.Node{doc}
		}
	}

	pages := make([]Page, 0, len(pageNodes))
	var tables []Table
	for i, pn := range pageNodes {
		page := Page{Number: i}
		style := attr(pn, "style")
		if w, ok := StyleOffset(style, "width"); ok {
			page.Width = w
		}
		if h, ok := StyleOffset(style, "height"); ok {
			page.Height = h
		}
		walkPage(pn, &page, &tables)
		pages = append(pages, page)
	}
	return pages, tables, nil
}

func walkPage(n *html.Node, page *Page, tables *[]Table) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "p":
			page.Lines = append(page.Lines, markupLine(c))
		case "table":
			*tables = append(*tables, Table{Page: page.Number, Rows: tableRows(c)})
		case "img", "script", "style":
		default:
			walkPage(c, page, tables)
		}
	}
}

func markupLine(p *html.Node) Line {
	style := attr(p, "style")
	left, okLeft := StyleOffset(style, "left")
	top, okTop := StyleOffset(style, "top")
	line := Line{Left: left, Top: top, Positioned: okLeft && okTop}

	var walk func(n *html.Node, bold bool)
	walk = func(n *html.Node, bold bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if c.Data != "" {
					line.Spans = append(line.Spans, Span{Text: c.Data, Bold: bold})
				}
			case html.ElementNode:
				switch c.Data {
				case "img":
				case "span":
					line.Spans = append(line.Spans, Span{
						Text:  textContent(c),
						Style: strings.TrimSpace(attr(c, "style")),
						Bold:  bold,
					})
				case "b", "strong":
					walk(c, true)
				default:
					walk(c, bold)
				}
			}
		}
	}
	walk(p, false)
	return line
}

func tableRows(t *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == "tr" {
				var row []string
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						row = append(row, cellText(cell))
					}
				}
				rows = append(rows, row)
				continue
			}
			walk(c)
		}
	}
	walk(t)
	return rows
}

// cellText keeps <br> and block boundaries as "\n".
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(c.Data)
			case c.Type == html.ElementNode && c.Data == "br":
				b.WriteString("\n")
			case c.Type == html.ElementNode && (c.Data == "p" || c.Data == "div"):
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				walk(c)
			case c.Type == html.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

var offsetRe = map[string]*regexp.Regexp{
	"left":   compileOffset("left"),
	"top":    compileOffset("top"),
	"width":  compileOffset("width"),
	"height": compileOffset("height"),
}

func compileOffset(prop string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[;\s])` + regexp.QuoteMeta(prop) + `:\s*(-?[\d.]*)pt`)
}

func offsetPattern(prop string) *regexp.Regexp {
	if re, ok := offsetRe[prop]; ok {
		return re
	}
	return compileOffset(prop)
}

// StyleOffset reads a point value such as "left:72.0pt" from an inline style.
func StyleOffset(style, prop string) (float64, bool) {
	m := offsetPattern(prop).FindStringSubmatch(style)
	if m == nil || m[1] == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isPageID(id string) bool {
	if !strings.HasPrefix(id, "page") {
		return false
	}
	_, err := strconv.Atoi(strings.TrimPrefix(id, "page"))
	return err == nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
