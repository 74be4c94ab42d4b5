package reader

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"horse.fit/seoguard/internal/seotext"
)

const DefaultBodyByteLimit = 2 * 1024 * 1024

// ContentFromHTML extracts the text payload of a rendered page: title and
// description from the document head, the first h1 and every h2/h3 from the
// markup, and the readable body text from readability.
func ContentFromHTML(r io.Reader, pageURL *url.URL) (seotext.Content, error) {
	raw, err := io.ReadAll(io.LimitReader(r, DefaultBodyByteLimit))
	if err != nil {
		return seotext.Content{}, fmt.Errorf("read html: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return seotext.Content{}, fmt.Errorf("parse html: %w", err)
	}

	var content seotext.Content
	walkHeadings(doc, &content)
	content.Title = findTitle(doc)
	content.Description = findMetaDescription(doc)

	if pageURL == nil {
		pageURL = &url.URL{Scheme: "https", Host: "localhost", Path: "/"}
	}
	article, err := readability.FromReader(bytes.NewReader(raw), pageURL)
	if err != nil {
		return seotext.Content{}, fmt.Errorf("readability parse: %w", err)
	}

	var rendered bytes.Buffer
	if err := article.RenderText(&rendered); err != nil {
		return seotext.Content{}, fmt.Errorf("render readability text: %w", err)
	}
	content.Body = CleanText(rendered.String())

	if content.Title == "" {
		content.Title = CleanText(article.Title())
	}
	if content.Description == "" {
		content.Description = CleanText(article.Excerpt())
	}
	if content.Title == "" {
		content.Title = content.Heading
	}
	return content, nil
}

// CleanText collapses all whitespace runs into single spaces.
func CleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func walkHeadings(n *html.Node, content *seotext.Content) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.H1:
			if content.Heading == "" {
				content.Heading = nodeText(n)
			}
			return
		case atom.H2, atom.H3:
			if text := nodeText(n); text != "" {
				content.Subheadings = append(content.Subheadings, text)
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHeadings(c, content)
	}
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		return nodeText(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findMetaDescription(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
		var name, value string
		for _, a := range n.Attr {
			switch strings.ToLower(a.Key) {
			case "name":
				name = strings.ToLower(strings.TrimSpace(a.Val))
			case "content":
				value = a.Val
			}
		}
		if name == "description" {
			return CleanText(value)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if d := findMetaDescription(c); d != "" {
			return d
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return CleanText(b.String())
}
