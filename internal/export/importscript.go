package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var commentPrefixes = []string{"--", "//", "/*"}

// runImportScript executes a line oriented script: one statement per line,
// blank and comment lines skipped, one trailing ";" removed. The first
// failing line stops the script.
func runImportScript(ctx context.Context, r io.Reader, s Session, logger *slog.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lineNo int64
	for scanner.Scan() {
		lineNo++
		stmt, ok := importStatement(scanner.Text())
		if !ok {
			continue
		}
		logger.Info(stmt)
		if err := s.Exec(ctx, stmt); err != nil {
			return &ImportError{Line: lineNo, SQL: stmt, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read import script at line %d: %w", lineNo+1, err)
	}
	return nil
}

// importStatement trims line and reports whether it holds a statement.
func importStatement(line string) (string, bool) {
	stmt := strings.TrimSpace(line)
	if stmt == "" {
		return "", false
	}
	for _, p := range commentPrefixes {
		if strings.HasPrefix(stmt, p) {
			return "", false
		}
	}
	stmt = strings.TrimSuffix(stmt, ";")
	if stmt == "" {
		return "", false
	}
	return stmt, true
}
