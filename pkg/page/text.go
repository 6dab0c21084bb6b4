package page

import (
	"strings"

	"golang.org/x/net/html"
)

// isSkippedElement reports elements whose text is never read.
func isSkippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "svg", "head":
		return true
	}
	return false
}

// isBlockElement reports elements that start a new line of text.
func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "header", "footer", "main", "aside", "nav",
		"h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol", "tr", "table",
		"br", "blockquote", "pre", "figcaption", "dd", "dt":
		return true
	}
	return false
}

// ReadableText returns the visible text of rawHTML, one block per line,
// with blank lines dropped.
func ReadableText(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var b strings.Builder
	collectText(doc, &b)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		// runs of two spaces separate headlines squeezed onto one line
		for _, chunk := range strings.Split(line, "  ") {
			if chunk = strings.TrimSpace(chunk); chunk != "" {
				lines = append(lines, chunk)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if isSkippedElement(tag) {
			return
		}
		if isBlockElement(tag) {
			b.WriteString("\n")
			defer b.WriteString("\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// Paragraphs splits the readable text of rawHTML into the chunks read aloud,
// skipping lines of three words or fewer.
func Paragraphs(rawHTML string) []string {
	var out []string
	for _, line := range strings.Split(ReadableText(rawHTML), "\n") {
		if len(strings.Fields(line)) > 3 {
			out = append(out, strings.Join(strings.Fields(line), " "))
		}
	}
	return out
}
