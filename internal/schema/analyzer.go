package schema

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"schema-export/internal/dialect"
)

// Analyze introspects a live database into the mapping model, sorted in
// dependency order. Table lookups are case-insensitive because Oracle
// reports upper-case names.
func Analyze(db *sql.DB, d dialect.Dialect, schemaName string, logger *slog.Logger) ([]*Table, error) {
	target := d.GetSchemaName(schemaName)

	tables, err := queryTables(db, d, target)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[strings.ToUpper(t.Name)] = t
	}

	if err := queryColumns(db, d, target, byName); err != nil {
		return nil, err
	}
	if err := queryForeignKeys(db, d, target, byName); err != nil {
		return nil, err
	}
	return SortTablesByFKCount(tables, logger), nil
}

func queryTables(db *sql.DB, d dialect.Dialect, target string) ([]*Table, error) {
	rows, err := db.Query(d.GetTablesQuery(target), target)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []*Table
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, &Table{Name: name, Dependencies: []string{}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// columnRow is one row of a dialect's columns query.
type columnRow struct {
	table, name, dataType, columnType, length sql.NullString
	nullable, key, extra, unique, comment     sql.NullString
}

func (r *columnRow) column(d dialect.Dialect) *Column {
	extra := strings.ToLower(r.extra.String)
	return &Column{
		Name:       r.name.String,
		DataType:   d.NormalizeType(r.dataType.String),
		Length:     parseLength(r.length),
		IsNullable: r.nullable.String == "YES" || r.nullable.String == "Y",
		IsPK:       strings.Contains(r.key.String, "PRI"),
		IsAutoInc: strings.Contains(extra, "auto_increment") ||
			strings.Contains(extra, "identity") ||
			strings.Contains(extra, "nextval"),
		IsUnique: strings.Contains(r.unique.String, "UNIQUE"),
	}
}

// parseLength accepts integer and decimal renderings ("255", "255.0").
func parseLength(s sql.NullString) int {
	if !s.Valid || s.String == "" {
		return 0
	}
	if n, err := strconv.Atoi(s.String); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s.String, 64); err == nil {
		return int(f)
	}
	return 0
}

func queryColumns(db *sql.DB, d dialect.Dialect, target string, byName map[string]*Table) error {
	rows, err := db.Query(d.GetColumnsQuery(target), target)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r columnRow
		if err := rows.Scan(&r.table, &r.name, &r.dataType, &r.columnType, &r.length,
			&r.nullable, &r.key, &r.extra, &r.unique, &r.comment); err != nil {
			return fmt.Errorf("failed to scan column (table: %s): %w", r.table.String, err)
		}
		if !r.table.Valid || !r.name.Valid {
			continue
		}
		if t, ok := byName[strings.ToUpper(r.table.String)]; ok {
			t.Columns = append(t.Columns, r.column(d))
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating columns: %w", err)
	}
	return nil
}

// queryForeignKeys attaches foreign keys between analyzed tables. Keys to
// tables outside the schema are ignored; self references are kept but do
// not count as dependencies.
func queryForeignKeys(db *sql.DB, d dialect.Dialect, target string, byName map[string]*Table) error {
	rows, err := db.Query(d.GetForeignKeysQuery(target), target)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var table, constraint, column, refTable, refColumn sql.NullString
		if err := rows.Scan(&table, &constraint, &column, &refTable, &refColumn); err != nil {
			return fmt.Errorf("failed to scan foreign key: %w", err)
		}
		t, ok := byName[strings.ToUpper(table.String)]
		if !ok || !refTable.Valid {
			continue
		}
		ref, ok := byName[strings.ToUpper(refTable.String)]
		if !ok {
			continue
		}
		t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
			Name:      constraint.String,
			Column:    column.String,
			RefTable:  ref.Name,
			RefColumn: refColumn.String,
		})
		if ref != t {
			t.Dependencies = append(t.Dependencies, ref.Name)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating foreign keys: %w", err)
	}
	return nil
}

// SortTablesByFKCount orders tables so every table follows the tables it
// references. Tables are taken in input order as soon as their
// dependencies are placed; when none is ready the dependencies form a
// cycle, which is broken by placing the table with the best score (fewest
// unplaced dependencies, tables in a two-way cycle first, then the greatest
// name).
func SortTablesByFKCount(tables []*Table, logger *slog.Logger) []*Table {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	sorted := make([]*Table, 0, len(tables))
	placed := make(map[string]bool, len(tables))
	place := func(t *Table) {
		sorted = append(sorted, t)
		placed[t.Name] = true
	}

	for len(sorted) < len(tables) {
		progressed := false
		for _, t := range tables {
			if !placed[t.Name] && pendingDeps(t, placed) == 0 {
				place(t)
				progressed = true
			}
		}
		if progressed {
			continue
		}

		var best *Table
		bestScore := 0
		for _, t := range tables {
			if placed[t.Name] {
				continue
			}
			score := cycleScore(t, byName, placed)
			if best == nil || score > bestScore || (score == bestScore && t.Name > best.Name) {
				best, bestScore = t, score
			}
		}
		if best == nil {
			logger.Error("remaining tables cannot be sorted", "sorted", len(sorted), "total", len(tables))
			break
		}
		place(best)
		logger.Info("breaking circular dependency", "table", best.Name, "score", bestScore)
	}

	return sorted
}

func pendingDeps(t *Table, placed map[string]bool) int {
	n := 0
	for _, dep := range t.Dependencies {
		if !placed[dep] {
			n++
		}
	}
	return n
}

// cycleScore ranks t as a cycle breaker: -100 per unplaced dependency,
// +500 when an unplaced dependency references t back.
func cycleScore(t *Table, byName map[string]*Table, placed map[string]bool) int {
	score := -100 * pendingDeps(t, placed)
	for _, dep := range t.Dependencies {
		if placed[dep] {
			continue
		}
		if d, ok := byName[dep]; ok && dependsOn(d, t.Name) {
			return score + 500
		}
	}
	return score
}

func dependsOn(t *Table, name string) bool {
	for _, dep := range t.Dependencies {
		if dep == name {
			return true
		}
	}
	return false
}
