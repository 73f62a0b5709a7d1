package dialect

import (
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server Driver
)

type MSSQLDialect struct{}

var mssqlTypes = map[string]string{
	"varchar":   "varchar($l)",
	"char":      "char($l)",
	"text":      "varchar(max)",
	"int":       "int",
	"smallint":  "smallint",
	"tinyint":   "tinyint",
	"bigint":    "bigint",
	"boolean":   "bit",
	"decimal":   "numeric($p,$s)",
	"float":     "float",
	"double":    "double precision",
	"date":      "date",
	"time":      "time",
	"timestamp": "datetime2",
	"blob":      "varbinary(max)",
	"uuid":      "uniqueidentifier",
}

func (d *MSSQLDialect) Name() string { return "sqlserver" }

// Introspection queries bind the schema as @p1, which go-mssqldb expects.

func (d *MSSQLDialect) GetTablesQuery(schema string) string {
	return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *MSSQLDialect) GetColumnsQuery(schema string) string {
	// Include PK, UNIQUE constraints, UNIQUE indexes, Identity info, and MS_Description (Comment)
	return `
		SELECT 
			c.TABLE_NAME, 
			c.COLUMN_NAME, 
			c.DATA_TYPE, 
			c.DATA_TYPE, 
			c.CHARACTER_MAXIMUM_LENGTH, 
			c.IS_NULLABLE, 
			CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 'PRIMARY' ELSE '' END AS COLUMN_KEY,
			CASE 
				WHEN idxc.column_id IS NOT NULL THEN 'identity' 
				WHEN COLUMNPROPERTY(OBJECT_ID(c.TABLE_SCHEMA + '.' + c.TABLE_NAME), c.COLUMN_NAME, 'IsIdentity') = 1 THEN 'identity'
				ELSE c.COLUMN_DEFAULT 
			END AS COLUMN_DEFAULT,
			CASE WHEN uq.COLUMN_NAME IS NOT NULL OR ui.COLUMN_NAME IS NOT NULL THEN 'UNIQUE' ELSE '' END AS IS_UNIQUE,
			CAST(ep.value AS NVARCHAR(MAX)) AS COMMENT
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT kcu.TABLE_NAME, kcu.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu 
				ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND tc.TABLE_SCHEMA = @p1
		) pk ON c.TABLE_NAME = pk.TABLE_NAME AND c.COLUMN_NAME = pk.COLUMN_NAME
		LEFT JOIN (
			SELECT kcu.TABLE_NAME, kcu.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu 
				ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			WHERE tc.CONSTRAINT_TYPE = 'UNIQUE' AND tc.TABLE_SCHEMA = @p1
		) uq ON c.TABLE_NAME = uq.TABLE_NAME AND c.COLUMN_NAME = uq.COLUMN_NAME
		LEFT JOIN (
			SELECT 
				t.name AS TABLE_NAME,
				col.name AS COLUMN_NAME
			FROM sys.indexes idx
			JOIN sys.index_columns ic ON idx.object_id = ic.object_id AND idx.index_id = ic.index_id
			JOIN sys.columns col ON ic.object_id = col.object_id AND ic.column_id = col.column_id
			JOIN sys.tables t ON idx.object_id = t.object_id
			JOIN sys.schemas s ON t.schema_id = s.schema_id
			WHERE idx.is_unique = 1 
				AND idx.is_primary_key = 0
				AND s.name = @p1
		) ui ON c.TABLE_NAME = ui.TABLE_NAME AND c.COLUMN_NAME = ui.COLUMN_NAME
		LEFT JOIN sys.identity_columns idxc
			ON idxc.object_id = OBJECT_ID(c.TABLE_SCHEMA + '.' + c.TABLE_NAME)
			AND idxc.name = c.COLUMN_NAME
		LEFT JOIN sys.extended_properties ep 
			ON ep.major_id = OBJECT_ID(c.TABLE_SCHEMA + '.' + c.TABLE_NAME) 
			AND ep.minor_id = c.ORDINAL_POSITION 
			AND ep.name = 'MS_Description'
		WHERE c.TABLE_SCHEMA = @p1 
		ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION
	`
}

func (d *MSSQLDialect) GetForeignKeysQuery(schema string) string {
	return `SELECT KCU1.TABLE_NAME, KCU1.CONSTRAINT_NAME, KCU1.COLUMN_NAME, KCU2.TABLE_NAME AS REF_TABLE, KCU2.COLUMN_NAME AS REF_COLUMN FROM INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS RC JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE KCU1 ON RC.CONSTRAINT_NAME = KCU1.CONSTRAINT_NAME JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE KCU2 ON RC.UNIQUE_CONSTRAINT_NAME = KCU2.CONSTRAINT_NAME WHERE KCU1.TABLE_SCHEMA = @p1`
}

func (d *MSSQLDialect) ColumnType(typ string, length, precision, scale int) string {
	return renderType(mssqlTypes, typ, length, precision, scale)
}

func (d *MSSQLDialect) IdentityColumn(sqlType string) string {
	return sqlType + " identity(1,1)"
}

func (d *MSSQLDialect) InlineIdentityKey() bool { return false }

func (d *MSSQLDialect) DropTable(table string) string {
	return fmt.Sprintf("drop table if exists %s", table)
}

func (d *MSSQLDialect) DropConstraints() bool { return true }

func (d *MSSQLDialect) DropForeignKey(table, name string) string {
	return fmt.Sprintf("alter table %s drop constraint %s", table, name)
}

func (d *MSSQLDialect) AlterForeignKeys() bool { return true }

func (d *MSSQLDialect) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (d *MSSQLDialect) TimestampLiteral(ts string) string {
	return quoteTimestamp(ts)
}

// SQL Server informational messages are not exposed through database/sql.
func (d *MSSQLDialect) WarningsQuery() string { return "" }

func (d *MSSQLDialect) NormalizeType(sqlType string) string {
	t := strings.ToLower(sqlType)
	switch t {
	case "nvarchar", "nchar", "text", "ntext":
		return "varchar"
	case "bit":
		return "boolean"
	case "tinyint":
		return "tinyint" // 0-255
	case "smallint":
		return "smallint"
	case "int":
		return "int"
	case "bigint":
		return "bigint"
	case "decimal", "numeric", "money", "smallmoney":
		return "decimal"
	case "float", "real":
		return "float"
	case "datetime", "datetime2", "smalldatetime", "date":
		return "datetime"
	case "image", "binary", "varbinary":
		return "blob"
	default:
		return t
	}
}

func (d *MSSQLDialect) GetSchemaName(input string) string {
	if input == "" {
		return "dbo"
	}
	return input
}
