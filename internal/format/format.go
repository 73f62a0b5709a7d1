// Package format renders SQL statements for the console and script files.
package format

import (
	"strings"
)

// Formatter rewrites one statement for display. It never changes what is
// executed against the database.
type Formatter interface {
	Format(sql string) string
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(sql string) string

func (f FormatterFunc) Format(sql string) string { return f(sql) }

// None leaves statements untouched.
var None Formatter = FormatterFunc(func(sql string) string { return sql })

// DDL pretty prints create table, alter table and comment statements.
var DDL Formatter = FormatterFunc(formatDDL)

// ForStyle returns DDL when pretty is set, None otherwise.
func ForStyle(pretty bool) Formatter {
	if pretty {
		return DDL
	}
	return None
}

const (
	indent       = "\n    "
	columnIndent = "\n        "
	nextColumn   = "\n       "
)

func formatDDL(sql string) string {
	if strings.TrimSpace(sql) == "" {
		return sql
	}
	lower := strings.ToLower(strings.TrimSpace(sql))
	switch {
	case strings.HasPrefix(lower, "create table"):
		return formatCreateTable(sql)
	case strings.HasPrefix(lower, "alter table"):
		return formatAlterTable(sql)
	case strings.HasPrefix(lower, "comment on"):
		return formatCommentOn(sql)
	default:
		return indent + sql
	}
}

// formatCreateTable breaks after the opening parenthesis and after every
// comma at the first nesting level.
func formatCreateTable(sql string) string {
	var b strings.Builder
	b.WriteString(indent)

	depth := 0
	quoted := false
	for _, tok := range tokenize(sql, "(,)'[]\"") {
		if isQuote(tok) {
			quoted = !quoted
		} else if !quoted && tok == ")" {
			depth--
			if depth == 0 {
				b.WriteString(indent)
			}
		}
		b.WriteString(tok)
		if quoted {
			continue
		}
		switch tok {
		case ",":
			if depth == 1 {
				b.WriteString(nextColumn)
			}
		case "(":
			depth++
			if depth == 1 {
				b.WriteString(columnIndent)
			}
		}
	}
	return b.String()
}

var alterBreaks = map[string]bool{
	"add":        true,
	"drop":       true,
	"references": true,
	"foreign":    true,
	"on":         true,
}

// formatAlterTable starts a new line before the clause keywords.
func formatAlterTable(sql string) string {
	var b strings.Builder
	b.WriteString(indent)

	quoted := false
	for _, tok := range tokenize(sql, " (,)'[]\"") {
		if isQuote(tok) {
			quoted = !quoted
		} else if !quoted && alterBreaks[strings.ToLower(tok)] {
			b.WriteString(columnIndent)
		}
		b.WriteString(tok)
	}
	return b.String()
}

// formatCommentOn starts a new line before the "is" keyword.
func formatCommentOn(sql string) string {
	var b strings.Builder
	b.WriteString(indent)

	quoted := false
	for _, tok := range tokenize(sql, " '") {
		b.WriteString(tok)
		if isQuote(tok) {
			quoted = !quoted
		} else if !quoted && strings.EqualFold(tok, "is") {
			b.WriteString(nextColumn)
		}
	}
	return b.String()
}

func isQuote(tok string) bool {
	return tok == "'" || tok == "\"" || tok == "`" || tok == "[" || tok == "]"
}

// tokenize splits s on any of the delimiter characters and keeps each
// delimiter as its own token.
func tokenize(s, delims string) []string {
	var tokens []string
	start := 0
	for i, r := range s {
		if strings.ContainsRune(delims, r) {
			if start < i {
				tokens = append(tokens, s[start:i])
			}
			tokens = append(tokens, string(r))
			start = i + len(string(r))
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}
