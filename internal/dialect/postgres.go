package dialect

import (
	"fmt"
	"strings"
)

type PostgresDialect struct{}

var postgresTypes = map[string]string{
	"varchar":   "varchar($l)",
	"char":      "char($l)",
	"text":      "text",
	"int":       "integer",
	"smallint":  "smallint",
	"tinyint":   "smallint",
	"bigint":    "bigint",
	"boolean":   "boolean",
	"decimal":   "numeric($p,$s)",
	"float":     "real",
	"double":    "double precision",
	"date":      "date",
	"time":      "time",
	"timestamp": "timestamp",
	"blob":      "bytea",
	"uuid":      "uuid",
}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) GetTablesQuery(schema string) string {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = $1 AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *PostgresDialect) GetColumnsQuery(schema string) string {
	// EXTRA slot carries the default, or "identity" for identity columns.
	return `SELECT 
    c.table_name, 
    c.column_name, 
    c.data_type, 
    c.udt_name, 
    c.character_maximum_length, 
    c.is_nullable, 
    (SELECT 'PRI' FROM information_schema.table_constraints tc 
     JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name 
     WHERE tc.constraint_type = 'PRIMARY KEY' 
     AND kcu.table_schema = c.table_schema AND kcu.table_name = c.table_name AND kcu.column_name = c.column_name LIMIT 1) AS COLUMN_KEY,
    COALESCE(c.column_default, CASE WHEN c.is_identity = 'YES' THEN 'identity' END), 
    (SELECT 'UNIQUE' FROM information_schema.table_constraints tc 
     JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name 
     WHERE tc.constraint_type = 'UNIQUE' 
     AND kcu.table_schema = c.table_schema AND kcu.table_name = c.table_name AND kcu.column_name = c.column_name LIMIT 1) AS IS_UNIQUE,
    NULL AS COMMENT
FROM information_schema.columns c
WHERE c.table_schema = $1 
ORDER BY c.table_name, c.ordinal_position`
}

func (d *PostgresDialect) GetForeignKeysQuery(schema string) string {
	return `SELECT kcu.table_name, kcu.constraint_name, kcu.column_name, ccu.table_name AS referenced_table_name, ccu.column_name AS referenced_column_name FROM information_schema.key_column_usage kcu JOIN information_schema.constraint_column_usage ccu ON kcu.constraint_name = ccu.constraint_name JOIN information_schema.table_constraints tc ON kcu.constraint_name = tc.constraint_name WHERE kcu.table_schema = $1 AND tc.constraint_type = 'FOREIGN KEY'`
}

func (d *PostgresDialect) ColumnType(typ string, length, precision, scale int) string {
	return renderType(postgresTypes, typ, length, precision, scale)
}

func (d *PostgresDialect) IdentityColumn(sqlType string) string {
	return sqlType + " generated by default as identity"
}

func (d *PostgresDialect) InlineIdentityKey() bool { return false }

func (d *PostgresDialect) DropTable(table string) string {
	// CASCADE takes the foreign keys with it, so constraints are not dropped one by one.
	return fmt.Sprintf("drop table if exists %s cascade", table)
}

func (d *PostgresDialect) DropConstraints() bool { return false }

func (d *PostgresDialect) DropForeignKey(table, name string) string {
	return fmt.Sprintf("alter table %s drop constraint if exists %s", table, name)
}

func (d *PostgresDialect) AlterForeignKeys() bool { return true }

func (d *PostgresDialect) BoolLiteral(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func (d *PostgresDialect) TimestampLiteral(ts string) string {
	return quoteTimestamp(ts)
}

// WarningsQuery is empty: notices arrive through the pq notice handler.
func (d *PostgresDialect) WarningsQuery() string { return "" }

func (d *PostgresDialect) NormalizeType(sqlType string) string {
	t := strings.ToLower(sqlType)
	switch t {
	case "int4", "int2":
		return "int"
	case "int8":
		return "bigint"
	case "float4":
		return "float"
	case "float8":
		return "double"
	case "bpchar":
		return "char"
	default:
		return t
	}
}

func (d *PostgresDialect) GetSchemaName(input string) string {
	if input == "" {
		return "public"
	}
	return input
}
