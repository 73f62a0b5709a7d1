package format

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-isatty"
)

// Highlighter colours SQL for terminal output using chroma.
type Highlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewHighlighter builds a Highlighter with the named chroma style. Unknown
// styles fall back to chroma's default.
func NewHighlighter(style string) *Highlighter {
	l := lexers.Get("SQL")
	if l == nil {
		l = lexers.Fallback
	}
	f := formatters.Get("terminal256")
	if f == nil {
		f = formatters.Fallback
	}
	return &Highlighter{
		lexer:     chroma.Coalesce(l),
		style:     styles.Get(style),
		formatter: f,
	}
}

// Highlight returns sql wrapped in terminal colour codes, or sql unchanged
// when tokenising fails.
func (h *Highlighter) Highlight(sql string) string {
	iter, err := h.lexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}
	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iter); err != nil {
		return sql
	}
	return b.String()
}

// IsTerminal reports whether w is a terminal. Only *os.File values can be.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
