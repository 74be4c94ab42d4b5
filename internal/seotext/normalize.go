package seotext

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Normalize flattens content into one lowercase string: fields in a fixed
// order, markup and control characters removed, whitespace collapsed. Markup
// is stripped per field so a broken tag in one field never reaches the next.
func Normalize(content Content) string {
	parts := make([]string, 0, 4+len(content.Subheadings)+2*len(content.FAQs))
	parts = append(parts, content.Title, content.Description, content.Heading)
	parts = append(parts, content.Subheadings...)
	for _, faq := range content.FAQs {
		parts = append(parts, faq.Question, faq.Answer)
	}
	parts = append(parts, content.Body)

	var joined strings.Builder
	for _, part := range parts {
		stripped := StripMarkup(part)
		if strings.TrimSpace(stripped) == "" {
			continue
		}
		joined.WriteString(stripped)
		joined.WriteByte(' ')
	}

	return NormalizeText(joined.String())
}

// NormalizeText lowercases, drops control characters and collapses whitespace.
func NormalizeText(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	lastSpace := false
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

// StripMarkup removes tags and comments and decodes entities. Every tag
// boundary becomes a space so adjacent words never merge. Script, style,
// noscript and template bodies are dropped only when their end tag closes them;
// an unclosed one is kept as text with its own markup stripped.
func StripMarkup(input string) string {
	if !strings.ContainsAny(input, "<&") {
		return input
	}

	var b strings.Builder
	b.Grow(len(input))

	var rawText strings.Builder
	inRawText := false

	tokenizer := html.NewTokenizer(strings.NewReader(input))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if inRawText {
				b.WriteString(StripMarkup(rawText.String()))
			}
			return b.String()
		case html.TextToken:
			if inRawText {
				rawText.Write(tokenizer.Raw())
			} else {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken:
			if !inRawText && isRawTextElement(tokenizer) {
				inRawText = true
				rawText.Reset()
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if inRawText && isRawTextElement(tokenizer) {
				inRawText = false
				rawText.Reset()
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(' ')
		}
	}
}

func isRawTextElement(tokenizer *html.Tokenizer) bool {
	name, _ := tokenizer.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	default:
		return false
	}
}
