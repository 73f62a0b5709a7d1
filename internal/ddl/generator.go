// Package ddl renders the mapping model into ordered drop and create
// scripts for one dialect.
package ddl

import (
	"fmt"
	"strings"

	"schema-export/internal/dialect"
	"schema-export/internal/naming"
	"schema-export/internal/schema"
)

// Generator produces DDL statements. Tables must already be in dependency
// order (see schema.Resolve and schema.Analyze).
type Generator struct {
	dialect dialect.Dialect
	naming  naming.Strategy
}

// New returns a Generator. A nil strategy keeps mapped names unchanged.
func New(d dialect.Dialect, s naming.Strategy) *Generator {
	if s == nil {
		s = naming.Default()
	}
	return &Generator{dialect: d, naming: s}
}

// DropScript returns the statements that remove the mapped tables: foreign
// key drops first (when the dialect needs them), then the tables in reverse
// dependency order.
func (g *Generator) DropScript(tables []*schema.Table) []string {
	var script []string
	if g.dialect.DropConstraints() {
		for _, t := range tables {
			for _, fk := range t.ForeignKeys {
				script = append(script, g.dialect.DropForeignKey(g.naming.TableName(t.Name), g.foreignKeyName(t, fk)))
			}
		}
	}
	for i := len(tables) - 1; i >= 0; i-- {
		script = append(script, g.dialect.DropTable(g.naming.TableName(tables[i].Name)))
	}
	return script
}

// CreateScript returns one create table statement per table followed by
// the foreign key constraints.
func (g *Generator) CreateScript(tables []*schema.Table) []string {
	script := make([]string, 0, len(tables))
	for _, t := range tables {
		script = append(script, g.createTable(t))
	}
	if g.dialect.AlterForeignKeys() {
		for _, t := range tables {
			for _, fk := range t.ForeignKeys {
				script = append(script, fmt.Sprintf("alter table %s add constraint %s %s",
					g.naming.TableName(t.Name), g.foreignKeyName(t, fk), g.references(fk)))
			}
		}
	}
	return script
}

func (g *Generator) createTable(t *schema.Table) string {
	var parts []string
	pkInlined := false

	for _, c := range t.Columns {
		def, inlined := g.columnDefinition(c)
		pkInlined = pkInlined || inlined
		parts = append(parts, g.naming.ColumnName(c.Name)+" "+def)
	}

	if pk := t.PrimaryKey(); len(pk) > 0 && !pkInlined {
		cols := make([]string, len(pk))
		for i, name := range pk {
			cols[i] = g.naming.ColumnName(name)
		}
		parts = append(parts, "primary key ("+strings.Join(cols, ", ")+")")
	}

	if !g.dialect.AlterForeignKeys() {
		for _, fk := range t.ForeignKeys {
			parts = append(parts, "constraint "+g.foreignKeyName(t, fk)+" "+g.references(fk))
		}
	}

	return fmt.Sprintf("create table %s (%s)", g.naming.TableName(t.Name), strings.Join(parts, ", "))
}

// columnDefinition renders everything after the column name. The second
// result reports whether the definition already carries the primary key.
func (g *Generator) columnDefinition(c *schema.Column) (string, bool) {
	sqlType := g.dialect.ColumnType(c.DataType, c.Length, c.Precision, c.Scale)
	inlined := false

	def := sqlType
	if c.IsAutoInc {
		switch {
		case !g.dialect.InlineIdentityKey():
			def = g.dialect.IdentityColumn(sqlType)
		case c.IsPK:
			def = g.dialect.IdentityColumn(sqlType)
			inlined = true
		}
	}

	if c.Default != nil {
		def += " default " + *c.Default
	}
	if (c.IsPK || !c.IsNullable) && !inlined {
		def += " not null"
	}
	if c.IsUnique && !c.IsPK {
		def += " unique"
	}
	return def, inlined
}

func (g *Generator) foreignKeyName(t *schema.Table, fk *schema.ForeignKey) string {
	if fk.Name != "" {
		return fk.Name
	}
	return g.naming.ForeignKeyName(t.Name, fk.Column)
}

func (g *Generator) references(fk *schema.ForeignKey) string {
	return fmt.Sprintf("foreign key (%s) references %s (%s)",
		g.naming.ColumnName(fk.Column), g.naming.TableName(fk.RefTable), g.naming.ColumnName(fk.RefColumn))
}
