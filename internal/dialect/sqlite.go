package dialect

import (
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite Driver (pure Go)
)

type SQLiteDialect struct{}

var sqliteTypes = map[string]string{
	"varchar":   "varchar($l)",
	"char":      "char($l)",
	"text":      "text",
	"int":       "integer",
	"smallint":  "smallint",
	"tinyint":   "tinyint",
	"bigint":    "bigint",
	"boolean":   "boolean",
	"decimal":   "numeric($p,$s)",
	"float":     "float",
	"double":    "double",
	"date":      "date",
	"time":      "time",
	"timestamp": "timestamp",
	"blob":      "blob",
	"uuid":      "varchar(36)",
}

func (d *SQLiteDialect) Name() string { return "sqlite" }

// SQLite has no information_schema; the queries below read sqlite_master and
// the pragma table functions, shaped like the other dialects' result sets.
// The "? IS NOT NULL" clause consumes the schema argument.

func (d *SQLiteDialect) GetTablesQuery(schema string) string {
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND ? IS NOT NULL ORDER BY name`
}

func (d *SQLiteDialect) GetColumnsQuery(schema string) string {
	return `
SELECT
    m.name,
    p.name,
    p.type,
    p.type,
    NULL,
    CASE WHEN p."notnull" = 0 AND p.pk = 0 THEN 'YES' ELSE 'NO' END,
    CASE WHEN p.pk > 0 THEN 'PRI' ELSE '' END,
    CASE WHEN p.pk > 0 AND upper(m.sql) LIKE '%AUTOINCREMENT%' THEN 'auto_increment' ELSE '' END,
    NULL,
    NULL
FROM sqlite_master m, pragma_table_info(m.name) p
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%' AND ? IS NOT NULL
ORDER BY m.name, p.cid`
}

func (d *SQLiteDialect) GetForeignKeysQuery(schema string) string {
	return `
SELECT
    m.name,
    'fk_' || m.name || '_' || f."from",
    f."from",
    f."table",
    f."to"
FROM sqlite_master m, pragma_foreign_key_list(m.name) f
WHERE m.type = 'table' AND ? IS NOT NULL`
}

func (d *SQLiteDialect) ColumnType(typ string, length, precision, scale int) string {
	return renderType(sqliteTypes, typ, length, precision, scale)
}

// IdentityColumn ignores the mapped type: only INTEGER PRIMARY KEY columns
// can autoincrement in SQLite.
func (d *SQLiteDialect) IdentityColumn(sqlType string) string {
	return "integer primary key autoincrement"
}

func (d *SQLiteDialect) InlineIdentityKey() bool { return true }

func (d *SQLiteDialect) DropTable(table string) string {
	return fmt.Sprintf("drop table if exists %s", table)
}

func (d *SQLiteDialect) DropConstraints() bool { return false }

func (d *SQLiteDialect) DropForeignKey(table, name string) string {
	return ""
}

// SQLite cannot ALTER TABLE ... ADD CONSTRAINT; foreign keys are inlined.
func (d *SQLiteDialect) AlterForeignKeys() bool { return false }

func (d *SQLiteDialect) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (d *SQLiteDialect) TimestampLiteral(ts string) string {
	return quoteTimestamp(ts)
}

func (d *SQLiteDialect) WarningsQuery() string { return "" }

func (d *SQLiteDialect) NormalizeType(sqlType string) string {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	// Declared lengths are kept in the type name, e.g. varchar(40).
	if i := strings.Index(t, "("); i > 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

func (d *SQLiteDialect) GetSchemaName(input string) string {
	if input == "" {
		return "main"
	}
	return input
}
