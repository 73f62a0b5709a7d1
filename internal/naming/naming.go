// Package naming maps logical table and column names from the mapping onto
// physical identifiers.
package naming

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Strategy turns mapped names into the identifiers written to DDL.
type Strategy interface {
	TableName(name string) string
	ColumnName(name string) string
	ForeignKeyName(table, column string) string
}

var strategies = map[string]Strategy{
	"default":  defaultStrategy{},
	"improved": improvedStrategy{},
	"upper":    caseStrategy{upper: true},
	"lower":    caseStrategy{},
}

// Lookup returns the strategy registered under name. An empty name is the
// default strategy.
func Lookup(name string) (Strategy, error) {
	if name == "" {
		return Default(), nil
	}
	s, ok := strategies[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown naming strategy %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names lists the registered strategies.
func Names() []string {
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default keeps names as written in the mapping.
func Default() Strategy { return defaultStrategy{} }

type defaultStrategy struct{}

func (defaultStrategy) TableName(name string) string  { return name }
func (defaultStrategy) ColumnName(name string) string { return name }
func (defaultStrategy) ForeignKeyName(table, column string) string {
	return "fk_" + table + "_" + column
}

// improvedStrategy converts CamelCase to snake_case.
type improvedStrategy struct{}

func (improvedStrategy) TableName(name string) string  { return snakeCase(name) }
func (improvedStrategy) ColumnName(name string) string { return snakeCase(name) }
func (improvedStrategy) ForeignKeyName(table, column string) string {
	return "fk_" + snakeCase(table) + "_" + snakeCase(column)
}

type caseStrategy struct {
	upper bool
}

func (s caseStrategy) apply(name string) string {
	if s.upper {
		return strings.ToUpper(name)
	}
	return strings.ToLower(name)
}

func (s caseStrategy) TableName(name string) string  { return s.apply(name) }
func (s caseStrategy) ColumnName(name string) string { return s.apply(name) }
func (s caseStrategy) ForeignKeyName(table, column string) string {
	return s.apply("fk_" + table + "_" + column)
}

// snakeCase inserts an underscore before an upper case letter that follows a
// lower case letter or digit, or that starts a new word after an acronym
// ("HTTPServer" -> "http_server").
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.ReplaceAll(b.String(), "__", "_")
}
