package dialect

import (
	"fmt"
	"strings"

	_ "github.com/sijms/go-ora/v2" // Oracle Driver
)

type OracleDialect struct{}

var oracleTypes = map[string]string{
	"varchar":   "varchar2($l char)",
	"char":      "char($l char)",
	"text":      "clob",
	"int":       "number(10,0)",
	"smallint":  "number(5,0)",
	"tinyint":   "number(3,0)",
	"bigint":    "number(19,0)",
	"boolean":   "number(1,0)",
	"decimal":   "number($p,$s)",
	"float":     "float",
	"double":    "double precision",
	"date":      "date",
	"time":      "date",
	"timestamp": "timestamp",
	"blob":      "blob",
	"uuid":      "varchar2(36 char)",
}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) GetTablesQuery(schema string) string {
	// Oracle doesn't have a "schema" string concept in quite the same way for current user tables.
	// USER_TABLES lists tables owned by the current user.
	// We include a dummy clause to consume the schema argument if passed by standard callers.
	return `SELECT TABLE_NAME FROM USER_TABLES WHERE :1 IS NOT NULL`
}

func (d *OracleDialect) GetColumnsQuery(schema string) string {
	// Retrieves column information for the current user's tables.
	// We join with USER_CONS_COLUMNS to identify Primary Keys (P) and Unique (U) constraints.
	// We also fetch comments from USER_COL_COMMENTS.
	return `
SELECT
    t.TABLE_NAME,
    t.COLUMN_NAME,
    CASE
        WHEN t.DATA_TYPE = 'NUMBER' AND COALESCE(t.DATA_SCALE, 0) > 0 THEN 'DECIMAL'
        WHEN t.DATA_TYPE = 'NUMBER' THEN 'INTEGER'
        ELSE t.DATA_TYPE
    END,
    t.DATA_TYPE || CASE WHEN t.DATA_LENGTH IS NOT NULL THEN '(' || t.DATA_LENGTH || ')' ELSE '' END,
    COALESCE(t.DATA_PRECISION, t.DATA_LENGTH),
    t.NULLABLE,
    CASE WHEN p.CONSTRAINT_NAME IS NOT NULL THEN 'PRI' ELSE '' END,
    CASE WHEN t.IDENTITY_COLUMN = 'YES' THEN 'auto_increment' ELSE '' END,
    CASE WHEN u.CONSTRAINT_NAME IS NOT NULL THEN 'UNIQUE' ELSE '' END,
    c.COMMENTS
FROM USER_TAB_COLUMNS t
LEFT JOIN (
    SELECT cc.TABLE_NAME, cc.COLUMN_NAME, cc.CONSTRAINT_NAME
    FROM USER_CONS_COLUMNS cc
    JOIN USER_CONSTRAINTS uc ON cc.CONSTRAINT_NAME = uc.CONSTRAINT_NAME
    WHERE uc.CONSTRAINT_TYPE = 'P'
) p ON t.TABLE_NAME = p.TABLE_NAME AND t.COLUMN_NAME = p.COLUMN_NAME
LEFT JOIN (
    SELECT cc.TABLE_NAME, cc.COLUMN_NAME, cc.CONSTRAINT_NAME
    FROM USER_CONS_COLUMNS cc
    JOIN USER_CONSTRAINTS uc ON cc.CONSTRAINT_NAME = uc.CONSTRAINT_NAME
    WHERE uc.CONSTRAINT_TYPE = 'U'
) u ON t.TABLE_NAME = u.TABLE_NAME AND t.COLUMN_NAME = u.COLUMN_NAME
LEFT JOIN USER_COL_COMMENTS c ON t.TABLE_NAME = c.TABLE_NAME AND t.COLUMN_NAME = c.COLUMN_NAME
WHERE :1 IS NOT NULL
ORDER BY t.TABLE_NAME, t.COLUMN_ID`
}

func (d *OracleDialect) GetForeignKeysQuery(schema string) string {
	return `
SELECT
    c.TABLE_NAME,
    c.CONSTRAINT_NAME,
    cc.COLUMN_NAME,
    r.TABLE_NAME AS REF_TABLE,
    rcc.COLUMN_NAME AS REF_COLUMN
FROM USER_CONSTRAINTS c
JOIN USER_CONS_COLUMNS cc
    ON c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
    AND c.OWNER = cc.OWNER
JOIN USER_CONSTRAINTS r
    ON c.R_CONSTRAINT_NAME = r.CONSTRAINT_NAME
    AND c.R_OWNER = r.OWNER
JOIN USER_CONS_COLUMNS rcc
    ON r.CONSTRAINT_NAME = rcc.CONSTRAINT_NAME
    AND r.OWNER = rcc.OWNER
    AND cc.POSITION = rcc.POSITION
WHERE c.CONSTRAINT_TYPE = 'R'
AND :1 IS NOT NULL`
}

func (d *OracleDialect) ColumnType(typ string, length, precision, scale int) string {
	return renderType(oracleTypes, typ, length, precision, scale)
}

func (d *OracleDialect) IdentityColumn(sqlType string) string {
	return sqlType + " generated by default as identity"
}

func (d *OracleDialect) InlineIdentityKey() bool { return false }

func (d *OracleDialect) DropTable(table string) string {
	return fmt.Sprintf("drop table %s cascade constraints", table)
}

func (d *OracleDialect) DropConstraints() bool { return false }

func (d *OracleDialect) DropForeignKey(table, name string) string {
	return fmt.Sprintf("alter table %s drop constraint %s", table, name)
}

func (d *OracleDialect) AlterForeignKeys() bool { return true }

func (d *OracleDialect) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (d *OracleDialect) TimestampLiteral(ts string) string {
	return "TIMESTAMP " + quoteTimestamp(ts)
}

func (d *OracleDialect) WarningsQuery() string { return "" }

func (d *OracleDialect) NormalizeType(sqlType string) string {
	s := strings.ToLower(sqlType)
	if strings.Contains(s, "char") || strings.Contains(s, "clob") {
		return "string"
	}
	if strings.Contains(s, "int") || strings.Contains(s, "number") || strings.Contains(s, "float") {
		return "integer"
	}
	if strings.Contains(s, "date") || strings.Contains(s, "time") || strings.Contains(s, "year") {
		return "datetime"
	}
	return s
}

func (d *OracleDialect) GetSchemaName(input string) string {
	return input
}
