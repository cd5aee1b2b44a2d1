package ui

import (
	"bytes"
	"encoding/json"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/log"
)

// Highlighter renders values as syntax highlighted JSON
type Highlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewHighlighter picks the chroma style for a dark or light terminal
func NewHighlighter(dark bool) *Highlighter {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	name := "github"
	if dark {
		name = "monokai"
	}
	style := styles.Get(name)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	return &Highlighter{
		lexer:     chroma.Coalesce(lexer),
		style:     style,
		formatter: formatter,
	}
}

// JSON renders v indented and highlighted. Highlighting failures fall back
// to the plain text.
func (h *Highlighter) JSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err.Error()
	}
	code := string(data)

	it, err := h.lexer.Tokenise(nil, code)
	if err != nil {
		log.Debug("tokenise failed", "err", err)
		return code
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		log.Debug("format failed", "err", err)
		return code
	}
	return buf.String()
}
