package export

import (
	"log/slog"
	"slices"
	"strings"
)

// ExcludeTables returns the statements that mention none of the excluded
// tables. Matching is a case-insensitive substring test on the whole
// statement, so "user" also drops statements about "users" or "user_roles".
// Order is preserved and the input is never modified.
func ExcludeTables(statements, exclusions []string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(statements) == 0 || len(exclusions) == 0 {
		return slices.Clone(statements)
	}

	var names, lowered []string
	for _, ex := range exclusions {
		if ex == "" {
			continue
		}
		names = append(names, ex)
		lowered = append(lowered, strings.ToLower(ex))
	}

	kept := make([]string, 0, len(statements))
	for _, stmt := range statements {
		text := strings.ToLower(stmt)
		excluded := false
		for i, ex := range lowered {
			if strings.Contains(text, ex) {
				logger.Info("excluding statement", "table", strings.ToUpper(names[i]))
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, stmt)
		}
	}
	return kept
}
