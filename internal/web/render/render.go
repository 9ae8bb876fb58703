// Package render turns model prose and artifact code into HTML for the
// browser UI.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// md renders conversational text. Raw HTML in model output is omitted by
// the renderer, never passed through; the fenced blocks were already
// extracted before rendering.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
)

// Markdown renders prose to HTML. On renderer failure the text is returned
// escaped in a <p> so the conversation still displays.
func Markdown(text string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return buf.String()
}

// codeStyle is the chroma style used for artifact highlighting.
const codeStyle = "monokai"

// Code applies syntax highlighting and returns HTML with inline styles.
// Unknown languages fall back to lexer analysis, then to plain text.
func Code(source, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get(codeStyle)
	if style == nil {
		style = chromastyles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return plainCode(source)
	}

	formatter := chromahtml.New(chromahtml.WithLineNumbers(true))
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return plainCode(source)
	}
	return buf.String()
}

func plainCode(source string) string {
	return fmt.Sprintf("<pre><code>%s</code></pre>", html.EscapeString(source))
}
