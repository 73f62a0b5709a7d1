// Package seed writes import scripts of fake rows for mapped tables. The
// scripts follow the import format of the exporter: one insert per line.
package seed

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"schema-export/internal/dialect"
	"schema-export/internal/naming"
	"schema-export/internal/schema"
)

// Options configures a Seeder. Rows defaults to 10.
type Options struct {
	Rows    int
	Seed    int64 // 0 picks a random seed
	Dialect dialect.Dialect
	Naming  naming.Strategy
	Logger  *slog.Logger
	// Progress is called after every generated row.
	Progress func()
}

// Result reports one table of a seed run.
type Result struct {
	TableName string
	Target    int
	Actual    int
	Status    string
}

type Seeder struct {
	rows     int
	dialect  dialect.Dialect
	naming   naming.Strategy
	logger   *slog.Logger
	progress func()
	values   *valueGenerator
}

func New(opts Options) *Seeder {
	s := &Seeder{
		rows:     opts.Rows,
		dialect:  opts.Dialect,
		naming:   opts.Naming,
		logger:   opts.Logger,
		progress: opts.Progress,
		values:   &valueGenerator{faker: gofakeit.New(opts.Seed)},
	}
	if s.rows <= 0 {
		s.rows = 10
	}
	if s.dialect == nil {
		s.dialect = dialect.GetDialect("postgres")
	}
	if s.naming == nil {
		s.naming = naming.Default()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// pool holds the values written so far, keyed by lowercased
// "table.column", so foreign keys can point at existing rows.
type pool map[string][]any

func poolKey(table, column string) string {
	return strings.ToLower(table + "." + column)
}

// Write generates rows for tables, which must be in dependency order, and
// writes them to w.
func (s *Seeder) Write(w io.Writer, tables []*schema.Table) ([]Result, error) {
	out := bufio.NewWriter(w)
	fkPool := pool{}
	var results []Result

	if _, err := fmt.Fprintf(out, "-- generated by schema-export seed (%s)\n", s.dialect.Name()); err != nil {
		return nil, fmt.Errorf("failed to write seed script: %w", err)
	}

	for _, t := range tables {
		res, err := s.writeTable(out, t, fkPool)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	if err := out.Flush(); err != nil {
		return results, fmt.Errorf("failed to write seed script: %w", err)
	}
	return results, nil
}

func (s *Seeder) writeTable(out *bufio.Writer, t *schema.Table, fkPool pool) (Result, error) {
	target := maxRows(t, s.rows)
	if target < s.rows {
		s.logger.Info("identity column limits rows", "table", t.Name, "rows", target)
	}

	var insertCols []*schema.Column
	var colNames []string
	for _, c := range t.Columns {
		if !c.IsAutoInc {
			insertCols = append(insertCols, c)
			colNames = append(colNames, s.naming.ColumnName(c.Name))
		}
	}
	prefix := fmt.Sprintf("insert into %s (%s) values (", s.naming.TableName(t.Name), strings.Join(colNames, ", "))

	if _, err := fmt.Fprintf(out, "-- %s\n", s.naming.TableName(t.Name)); err != nil {
		return Result{}, fmt.Errorf("failed to write seed script: %w", err)
	}

	pk := t.PrimaryKey()
	usedKeys := map[string]bool{}
	usedUnique := map[string]map[string]bool{}
	for _, c := range insertCols {
		if c.IsUnique || (c.IsPK && len(pk) == 1) {
			usedUnique[c.Name] = map[string]bool{}
		}
	}

	inserted, attempts := 0, 0
	for inserted < target && attempts < target*10 {
		attempts++
		values := s.row(t, insertCols, fkPool, inserted, attempts)

		lits := make([]string, len(values))
		for i, v := range values {
			lits[i] = literal(s.dialect, v)
		}

		var key string
		if len(pk) > 1 {
			var parts []string
			for i, c := range insertCols {
				if c.IsPK {
					parts = append(parts, lits[i])
				}
			}
			key = strings.Join(parts, "|")
			if usedKeys[key] {
				continue
			}
		}

		duplicate := false
		for i, c := range insertCols {
			if used, ok := usedUnique[c.Name]; ok && used[lits[i]] {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		if len(pk) > 1 {
			usedKeys[key] = true
		}
		for i, c := range insertCols {
			if used, ok := usedUnique[c.Name]; ok {
				used[lits[i]] = true
			}
		}

		if _, err := out.WriteString(prefix + strings.Join(lits, ", ") + ");\n"); err != nil {
			return Result{}, fmt.Errorf("failed to write seed script: %w", err)
		}
		inserted++
		s.remember(t, insertCols, values, inserted, fkPool)
		if s.progress != nil {
			s.progress()
		}
	}

	status := "OK"
	if inserted < target {
		status = "PARTIAL"
		s.logger.Warn("could not generate enough distinct rows", "table", t.Name, "rows", inserted, "target", target)
	}
	return Result{TableName: t.Name, Target: target, Actual: inserted, Status: status}, nil
}

// row builds the values of one insert. Single integer primary keys count
// up from 1 so referencing tables can rely on them.
func (s *Seeder) row(t *schema.Table, cols []*schema.Column, fkPool pool, inserted, attempt int) []any {
	singlePK := len(t.PrimaryKey()) == 1
	values := make([]any, len(cols))
	for i, c := range cols {
		if fk := foreignKeyFor(t, c.Name); fk != nil {
			values[i] = s.reference(c, fk, fkPool, attempt)
			continue
		}
		if c.IsPK && singlePK && isInteger(c.DataType) {
			values[i] = inserted + 1
			continue
		}
		values[i] = s.values.value(c)
	}
	return values
}

// reference picks an existing parent value. Without one, nullable columns
// get null and others fall back to 1, the first generated key.
func (s *Seeder) reference(c *schema.Column, fk *schema.ForeignKey, fkPool pool, attempt int) any {
	vals := fkPool[poolKey(fk.RefTable, fk.RefColumn)]
	if len(vals) > 0 {
		if c.IsUnique || c.IsPK {
			return vals[(attempt-1)%len(vals)]
		}
		return vals[s.values.faker.Number(0, len(vals)-1)]
	}
	if c.IsNullable {
		return nil
	}
	return 1
}

// remember records the written row. Identity columns are assumed to count
// from 1 on the freshly created table.
func (s *Seeder) remember(t *schema.Table, cols []*schema.Column, values []any, inserted int, fkPool pool) {
	for _, c := range t.Columns {
		if c.IsAutoInc {
			key := poolKey(t.Name, c.Name)
			fkPool[key] = append(fkPool[key], inserted)
		}
	}
	for i, c := range cols {
		if values[i] == nil {
			continue
		}
		key := poolKey(t.Name, c.Name)
		fkPool[key] = append(fkPool[key], values[i])
	}
}

func foreignKeyFor(t *schema.Table, column string) *schema.ForeignKey {
	for _, fk := range t.ForeignKeys {
		if fk.Column == column {
			return fk
		}
	}
	return nil
}

func isInteger(typ string) bool {
	switch dialect.GenericType(typ) {
	case "int", "bigint", "smallint", "tinyint":
		return true
	}
	return false
}
