package feed

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

const (
	UntitledFeed = "Untitled Feed"
	UntitledPost = "Untitled Post"
	NoContent    = "No content available"
)

// chrome is page furniture that never belongs in the reader.
const chrome = "nav, header, footer, aside, script, style, noscript, form, iframe, " +
	"[role=navigation], [role=banner], [role=contentinfo]"

// Converter turns entry HTML into markdown-flavoured plain text.
type Converter struct {
	md *md.Converter
}

func NewConverter() *Converter {
	conv := md.NewConverter("", true, &md.Options{CodeBlockStyle: "fenced"})
	conv.Use(plugin.GitHubFlavored())
	return &Converter{md: conv}
}

// Convert strips page chrome and converts the remaining markup. Paragraphs,
// headings, lists, tables, emphasis and code blocks keep their structure.
func (c *Converter) Convert(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	doc.Find(chrome).Remove()

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}

	out, err := c.md.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("converting html: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Readable never fails: missing or unconvertible content becomes NoContent.
func (c *Converter) Readable(html string) string {
	if strings.TrimSpace(html) == "" {
		return NoContent
	}
	out, err := c.Convert(html)
	if err != nil || out == "" {
		return NoContent
	}
	return out
}
