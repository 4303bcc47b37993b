// Package markup renders question prompts and preambles.
//
// Prompts are rich text: Markdown with inline HTML. They are converted with
// goldmark and sanitized with bluemonday before reaching a template.
package markup

import (
	"bytes"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	policy = newPolicy()

	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	blankPattern = regexp.MustCompile(`\n{3,}`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowElements("mark", "u", "sup", "sub")
	return p
}

// HTML converts rich text to sanitized HTML, safe to embed in a page.
func HTML(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(policy.Sanitize(template.HTMLEscapeString(src)))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}

// Markdown strips inline HTML tags from rich text, leaving Markdown suitable for a terminal renderer.
func Markdown(src string) string {
	text := tagPattern.ReplaceAllString(src, "")
	text = html.UnescapeString(text)
	text = blankPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
